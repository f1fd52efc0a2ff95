package lexicon

// English returns a lexicon preloaded with common irregular English forms.
func English() *Lexicon {
	lex := New()
	for lemma, forms := range irregular {
		lex.AddGroup(lemma, forms)
	}
	return lex
}

var irregular = map[string][]string{
	"be":         {"is", "are", "was", "were", "been", "being", "am"},
	"have":       {"has", "had", "having"},
	"do":         {"does", "did", "done", "doing"},
	"go":         {"goes", "went", "gone", "going"},
	"child":      {"children"},
	"person":     {"people"},
	"mouse":      {"mice"},
	"goose":      {"geese"},
	"foot":       {"feet"},
	"tooth":      {"teeth"},
	"man":        {"men"},
	"woman":      {"women"},
	"leaf":       {"leaves"},
	"life":       {"lives"},
	"knife":      {"knives"},
	"wife":       {"wives"},
	"half":       {"halves"},
	"analysis":   {"analyses"},
	"crisis":     {"crises"},
	"thesis":     {"theses"},
	"datum":      {"data"},
	"criterion":  {"criteria"},
	"phenomenon": {"phenomena"},
	"index":      {"indices"},
	"matrix":     {"matrices"},
	"good":       {"better", "best"},
	"bad":        {"worse", "worst"},
	"say":        {"says", "said"},
	"make":       {"makes", "made"},
	"take":       {"takes", "took", "taken"},
	"see":        {"sees", "saw", "seen"},
	"come":       {"comes", "came"},
	"get":        {"gets", "got", "gotten"},
	"give":       {"gives", "gave", "given"},
	"know":       {"knows", "knew", "known"},
	"think":      {"thinks", "thought"},
	"write":      {"writes", "wrote", "written"},
	"run":        {"runs", "ran", "running"},
	"sit":        {"sits", "sat", "sitting"},
}

package preprocess

// Options toggles the individual cleaning and preprocessing steps.
// Each flag is independent; the order in which enabled steps run is fixed
// (see Tokenizer.Tokenize).
type Options struct {
	Lowercase             bool `yaml:"lowercase" json:"lowercase" mapstructure:"lowercase"`
	RemovePunctuation     bool `yaml:"remove_punctuation" json:"remove_punctuation" mapstructure:"remove_punctuation"`
	RemoveNumbers         bool `yaml:"remove_numbers" json:"remove_numbers" mapstructure:"remove_numbers"`
	RemoveExtraWhitespace bool `yaml:"remove_extra_whitespace" json:"remove_extra_whitespace" mapstructure:"remove_extra_whitespace"`
	RemoveStopwords       bool `yaml:"remove_stopwords" json:"remove_stopwords" mapstructure:"remove_stopwords"`
	Stem                  bool `yaml:"stem" json:"stem" mapstructure:"stem"`
	Lemmatize             bool `yaml:"lemmatize" json:"lemmatize" mapstructure:"lemmatize"`
}

// AllOptions enables every step.
func AllOptions() Options {
	return Options{
		Lowercase:             true,
		RemovePunctuation:     true,
		RemoveNumbers:         true,
		RemoveExtraWhitespace: true,
		RemoveStopwords:       true,
		Stem:                  true,
		Lemmatize:             true,
	}
}

// CleaningOptions enables only the character-level steps.
func CleaningOptions() Options {
	return Options{
		RemovePunctuation:     true,
		RemoveNumbers:         true,
		RemoveExtraWhitespace: true,
	}
}

// Fingerprint returns a stable string identifying the enabled steps, used
// as part of vocabulary cache keys.
func (o Options) Fingerprint() string {
	flags := []bool{o.Lowercase, o.RemovePunctuation, o.RemoveNumbers, o.RemoveExtraWhitespace, o.RemoveStopwords, o.Stem, o.Lemmatize}
	b := make([]byte, len(flags))
	for i, f := range flags {
		b[i] = '0'
		if f {
			b[i] = '1'
		}
	}
	return string(b)
}

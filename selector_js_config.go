package store

type jsSelectorConfig struct {
	cache ProgramCache
}

// JSSelectorOption configures the JS selector.
type JSSelectorOption func(*jsSelectorConfig)

// JSWithProgramCache applies a ProgramCache to the JS selector.
func JSWithProgramCache(cache ProgramCache) JSSelectorOption {
	return func(cfg *jsSelectorConfig) {
		cfg.cache = cache
	}
}

func applyJSSelectorOptions(opts []JSSelectorOption) jsSelectorConfig {
	cfg := jsSelectorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

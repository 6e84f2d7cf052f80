package config

// Load resolves projectRoot's config file, preferring `.spproject.kdl`
// when present (the teacher's own primary format) and falling back to
// `.spproject.toml`, then to Default() with projectRoot as its sole root
// when neither file exists. The core never requires either file to
// function.
func Load(projectRoot string) (*Config, error) {
	cfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	cfg, err = LoadTOML(projectRoot)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	cfg = Default()
	cfg.Roots = nil
	return cfg.WithRoot(projectRoot), nil
}

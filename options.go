package glyphcache

// Config holds configuration for a GlyphCache.
type Config struct {
	// InitialAtlasSize is the starting edge length of each atlas.
	// Must be a power of 2. Default: 1024
	InitialAtlasSize int

	// MaxAtlasSize caps growth. Must be a power of 2 and at least
	// InitialAtlasSize. Default: 8192
	MaxAtlasSize int

	// Padding between packed glyphs to prevent sampling bleed.
	// Default: 1
	Padding int

	// MaxGlyphEdge bounds a single rasterized glyph in either
	// dimension and sizes the reusable scratch buffer. Default: 256
	MaxGlyphEdge int

	// ScaleFactor is the initial display scale factor. Quantized to
	// an integer in [1,4]. Default: 1
	ScaleFactor float64
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		InitialAtlasSize: 1024,
		MaxAtlasSize:     8192,
		Padding:          1,
		MaxGlyphEdge:     256,
		ScaleFactor:      1,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.InitialAtlasSize < 64 {
		return &ConfigError{Field: "InitialAtlasSize", Reason: "must be at least 64"}
	}
	if c.InitialAtlasSize&(c.InitialAtlasSize-1) != 0 {
		return &ConfigError{Field: "InitialAtlasSize", Reason: "must be power of 2"}
	}
	if c.MaxAtlasSize < c.InitialAtlasSize {
		return &ConfigError{Field: "MaxAtlasSize", Reason: "must be at least InitialAtlasSize"}
	}
	if c.MaxAtlasSize&(c.MaxAtlasSize-1) != 0 {
		return &ConfigError{Field: "MaxAtlasSize", Reason: "must be power of 2"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.MaxGlyphEdge < 8 {
		return &ConfigError{Field: "MaxGlyphEdge", Reason: "must be at least 8"}
	}
	if c.MaxGlyphEdge > c.InitialAtlasSize {
		return &ConfigError{Field: "MaxGlyphEdge", Reason: "must be at most InitialAtlasSize"}
	}
	if c.ScaleFactor <= 0 {
		return &ConfigError{Field: "ScaleFactor", Reason: "must be positive"}
	}
	return nil
}

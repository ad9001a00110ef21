package config

const (
	defaultStoreBackend     = "s3"
	defaultRegion           = "us-west-2"
	defaultManifestDir      = "~/.local/share/vcat/manifests"
	defaultLogDir           = "~/.local/share/vcat/logs"
	defaultCatalogName      = "VCAT Test Assets"
	defaultCatalogDesc      = "Auto-generated playlist catalog"
	defaultCreatedBy        = "vcat"
	defaultCatalogKey       = "vcat_testvector_playlist_catalog.json"
	defaultMediaPrefix      = "media/"
	defaultManifestPrefix   = "manifests/"
	defaultConcurrency      = 4
	defaultFFprobeBinary    = "ffprobe"
	defaultVerifyHTTPSecond = 30
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Store: Store{
			Backend: defaultStoreBackend,
			Region:  defaultRegion,
		},
		Catalog: Catalog{
			Name:           defaultCatalogName,
			Description:    defaultCatalogDesc,
			CreatedBy:      defaultCreatedBy,
			CatalogKey:     defaultCatalogKey,
			MediaPrefix:    defaultMediaPrefix,
			ManifestPrefix: defaultManifestPrefix,
		},
		Paths: Paths{
			ManifestDir: defaultManifestDir,
			LogDir:      defaultLogDir,
		},
		Build: Build{
			Concurrency:   defaultConcurrency,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Verify: Verify{
			Concurrency: defaultConcurrency,
			Recursive:   true,
			HTTPTimeout: defaultVerifyHTTPSecond,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package config

const (
	MESSAGE_TMPL_PATH  = "path"
	MESSAGE_TMPL_TIME  = "time"
	MESSAGE_TMPL_COUNT = "count"
)

const (
	DefaultSourceURL       = "https://ipdb.api.030101.xyz/data"
	DefaultAPIURL          = "https://api.github.com"
	DefaultTargetPath      = "BestProxy/proxy.txt"
	DefaultMessageTemplate = "Update {{path}} - {{time}} (Total IPs: {{count}})"
	DefaultTimezone        = "Asia/Shanghai"
)

// DefaultExcludeCIDRs are the Cloudflare edge ranges. Addresses inside them are
// Cloudflare itself rather than a reverse proxy in front of it.
var DefaultExcludeCIDRs = []string{
	"173.245.48.0/20",
	"103.21.244.0/22",
	"103.22.200.0/22",
	"103.31.4.0/22",
	"141.101.64.0/18",
	"108.162.192.0/18",
	"190.93.240.0/20",
	"188.114.96.0/20",
	"197.234.240.0/22",
	"198.41.128.0/17",
	"162.158.0.0/15",
	"104.16.0.0/13",
	"104.24.0.0/14",
	"172.64.0.0/13",
	"131.0.72.0/22",
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			WorkDir:     ".",
			ArchiveName: "txt.zip",
			OutputFile:  "proxy.txt",
			TextSuffix:  ".txt",
		},
		Source: SourceConfig{
			URLs:           []string{DefaultSourceURL},
			TimeoutSeconds: 60,
		},
		Filter: FilterConfig{
			Enabled:      true,
			ExcludeCIDRs: append([]string(nil), DefaultExcludeCIDRs...),
		},
		Publish: PublishConfig{
			Enabled:         true,
			APIURL:          DefaultAPIURL,
			TargetPath:      DefaultTargetPath,
			MessageTemplate: DefaultMessageTemplate,
			Timezone:        DefaultTimezone,
			TimeoutSeconds:  30,
		},
	}
}

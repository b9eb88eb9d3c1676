package config

// Family identifies an IP address family.
type Family uint8

const (
	FamilyInvalid Family = 0
	FamilyIPv4    Family = 4
	FamilyIPv6    Family = 6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "IPv4"
	case FamilyIPv6:
		return "IPv6"
	default:
		return "invalid"
	}
}

// Backend identifiers for the enforcement engine.
const (
	BackendNftables = "nftables"
	BackendIptables = "iptables"
)

// Defaults applied by ApplyDefaults for fields left empty in the config file.
const (
	DefaultTableName         = "nftblock"
	DefaultBatchSize         = 1000
	DefaultUserAgent         = "nftblock/1.0 (+https://github.com/nftblock/nftblock)"
	DefaultSyncIntervalHours = 12
)

type Config struct {
	// ConfigVersion is the configuration file version.
	ConfigVersion uint8 `toml:"config_version" json:"config_version"`
	// General holds general configuration.
	General *GeneralConfig `toml:"general"`
	// API configures the HTTP status/control API (service mode only).
	API *APIConfig `toml:"api,omitempty" json:"api,omitempty"`
	// Sources are the remote blocklists to synchronize from. Order is not significant.
	Sources []*SourceConfig `toml:"source,omitempty" json:"source,omitempty"`
	// Rules are optional extra rule expressions appended to the filter chains.
	// Available variables: {{table}}, {{chain}}, {{set_v4}}, {{set_v6}}.
	Rules []*ExtraRule `toml:"rule,omitempty" json:"rule,omitempty" validate:"dive"`
}

type GeneralConfig struct {
	// Backend selects the enforcement engine: "nftables" (default) or "iptables" (legacy ipset-based).
	Backend string `toml:"backend" json:"backend" validate:"omitempty,oneof=nftables iptables"`
	// TableName is the name of the firewall table (and the iptables chain prefix for the legacy backend).
	TableName string `toml:"table_name" json:"table_name" validate:"omitempty,object_name"`
	// BatchSize is the number of set elements submitted per control-plane command.
	BatchSize int `toml:"batch_size" json:"batch_size" validate:"gte=0"`
	// UserAgent is sent with every list download.
	UserAgent string `toml:"user_agent" json:"user_agent"`
	// Proxy is an optional proxy URL applied to all list downloads (http://, https:// or socks5://).
	Proxy string `toml:"proxy,omitempty" json:"proxy,omitempty" validate:"omitempty,proxy_url"`
	// DownloadTimeoutSec bounds a single list download (0 = HTTP client default).
	DownloadTimeoutSec int `toml:"download_timeout_sec" json:"download_timeout_sec" validate:"gte=0"`
	// SyncIntervalHours is the interval between sync passes in service mode (default: 12).
	SyncIntervalHours int `toml:"sync_interval_hours" json:"sync_interval_hours" validate:"gte=0"`
	// Resolver is the DNS server (host[:port]) used for sources with resolve_hostnames enabled.
	Resolver string `toml:"resolver,omitempty" json:"resolver,omitempty" validate:"omitempty,host_port"`
}

type APIConfig struct {
	// Enabled enables the HTTP API in service mode.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Listen is the bind address, e.g. "127.0.0.1:8787".
	Listen string `toml:"listen" json:"listen" validate:"required_if=Enabled true,omitempty,host_port"`
}

type SourceConfig struct {
	// Name identifies the source in logs and statistics.
	Name string `toml:"name" json:"name" validate:"required,object_name"`
	// URL is the location of the remote blocklist.
	URL string `toml:"url" json:"url" validate:"required,url"`
	// ResolveHostnames resolves DNS names found in the list to A/AAAA records
	// instead of dropping them as invalid entries (default: false).
	ResolveHostnames bool `toml:"resolve_hostnames" json:"resolve_hostnames"`
}

type ExtraRule struct {
	// Chain is the filter chain to append to: "input" or "output".
	Chain string `toml:"chain" json:"chain" validate:"required,oneof=input output"`
	// Expr is the rule expression. Template variables are expanded before applying.
	Expr string `toml:"expr" json:"expr" validate:"required"`
}

// Template variable names available in ExtraRule expressions.
const (
	RuleTmplTable = "table"
	RuleTmplChain = "chain"
	RuleTmplSetV4 = "set_v4"
	RuleTmplSetV6 = "set_v6"
)

// ApplyDefaults fills unset fields with their default values.
func (c *Config) ApplyDefaults() {
	if c.General == nil {
		c.General = &GeneralConfig{}
	}
	if c.General.Backend == "" {
		c.General.Backend = BackendNftables
	}
	if c.General.TableName == "" {
		c.General.TableName = DefaultTableName
	}
	if c.General.BatchSize == 0 {
		c.General.BatchSize = DefaultBatchSize
	}
	if c.General.UserAgent == "" {
		c.General.UserAgent = DefaultUserAgent
	}
	if c.General.SyncIntervalHours == 0 {
		c.General.SyncIntervalHours = DefaultSyncIntervalHours
	}
}

// SourceURLs returns the configured source URLs in file order.
func (c *Config) SourceURLs() []string {
	urls := make([]string, 0, len(c.Sources))
	for _, src := range c.Sources {
		urls = append(urls, src.URL)
	}
	return urls
}

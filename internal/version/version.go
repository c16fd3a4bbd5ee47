package version

// Version is overridden at build time with -ldflags "-X github.com/bnema/wg-scraper/internal/version.Version=...".
var Version = "dev"

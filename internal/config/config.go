package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	FormatAHK     = "ahk"
	FormatRecords = "records"
)

// DefaultUniqueCategories are the item classes queried for unique items.
var DefaultUniqueCategories = []string{
	"Amulets", "Belts", "Rings", "Quivers",
	"Body Armours", "Boots", "Gloves", "Helmets", "Shields",
	"One Hand Axes", "Two Hand Axes", "Bows", "Claws", "Daggers", "Fishing Rods",
	"One Hand Maces", "Sceptres", "Two Hand Maces", "Staves",
	"One Hand Swords", "Thrusting One Hand Swords", "Two Hand Swords", "Wands",
	"Life Flasks", "Mana Flasks", "Hybrid Flasks", "Utility Flasks",
	"Jewel", "Maps",
}

type Config struct {
	WikiAPIURL  string
	WikiBaseURL string
	APILimit    int
	HTTPTimeout time.Duration
	UserAgent   string

	OutputDir    string
	OutputFormat string

	UniqueCategories  []string
	StyleVariantsPath string
	CardsArticle      string
	CardsIncludeDrops bool
	MapsArticle       string

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	MetricsTextfile string
	MetricsPushURL  string
	LogLevel        string
}

func Load() *Config {
	// A missing .env is fine, the environment alone is enough.
	_ = godotenv.Load()

	return &Config{
		WikiAPIURL:  getEnv("WIKI_API_URL", "https://pathofexile.gamepedia.com/api.php"),
		WikiBaseURL: getEnv("WIKI_BASE_URL", "https://pathofexile.gamepedia.com/"),
		APILimit:    getEnvInt("API_LIMIT", 500),
		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 60*time.Second),
		UserAgent:   getEnv("USER_AGENT", "poewiki-scraper/1.0"),

		OutputDir:    getEnv("OUTPUT_DIR", "."),
		OutputFormat: getEnv("OUTPUT_FORMAT", FormatAHK),

		UniqueCategories:  getEnvList("UNIQUE_CATEGORIES", DefaultUniqueCategories),
		StyleVariantsPath: getEnv("STYLE_VARIANTS_PATH", "UniqueStyleVariants.json"),
		CardsArticle:      getEnv("CARDS_ARTICLE", "List_of_divination_cards"),
		CardsIncludeDrops: getEnvBool("CARDS_INCLUDE_DROPS", true),
		MapsArticle:       getEnv("MAPS_ARTICLE", "List_of_maps"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		CacheTTL:    getEnvDuration("CACHE_TTL", time.Hour),

		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		MetricsPushURL:  os.Getenv("METRICS_PUSHGATEWAY_URL"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return d
	}
	return n
}

func getEnvBool(k string, d bool) bool {
	b, err := strconv.ParseBool(os.Getenv(k))
	if err != nil {
		return d
	}
	return b
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return d
	}
	return v
}

func getEnvList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return append([]string(nil), d...)
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), d...)
	}
	return out
}

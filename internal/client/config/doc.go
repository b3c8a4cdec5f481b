// Package config loads runtime configuration for the gophsocial CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. GOPHSOCIAL_* environment variables, read with cleanenv.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   server base URL
//	-d string   local database path
//	-t int      request timeout (seconds)
//	-r float    max requests per second
//	-l string   log level
//	-m string   metrics textfile
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s" or
// integer nanoseconds. Keys left out keep their earlier value:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "db_path": "gophsocial.db",
//	  "request_timeout": "10s",
//	  "requests_per_second": 5,
//	  "feed_page_size": 10,
//	  "session_cookie_name": "token",
//	  "log_level": "info",
//	  "metrics_file": ""
//	}
//
// # Environment
//
//	GOPHSOCIAL_SERVER_URL, GOPHSOCIAL_DB_PATH, GOPHSOCIAL_REQUEST_TIMEOUT,
//	GOPHSOCIAL_RPS, GOPHSOCIAL_FEED_PAGE_SIZE, GOPHSOCIAL_SESSION_COOKIE,
//	GOPHSOCIAL_LOG_LEVEL, GOPHSOCIAL_METRICS_FILE
package config

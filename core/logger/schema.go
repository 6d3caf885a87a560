package logger

import "strings"

var levelNames = map[string]string{
	"debug":   "DEBUG",
	"info":    "INFO",
	"warn":    "WARN",
	"warning": "WARN",
	"error":   "ERROR",
}

var knownStatus = map[string]bool{
	"ok":           true,
	"fail":         true,
	"skip":         true,
	"rate_limited": true,
	"cancelled":    true,
}

var knownOutcome = map[string]bool{
	"ok":           true,
	"fail":         true,
	"cancelled":    true,
	"rate_limited": true,
}

func normalizeLevel(level string) string {
	if level == "" {
		return "INFO"
	}
	if name, ok := levelNames[strings.ToLower(level)]; ok {
		return name
	}
	return strings.ToUpper(level)
}

// normalizeStatus lowercases known statuses and keeps unknown ones verbatim.
func normalizeStatus(status string) string {
	lower := strings.ToLower(strings.TrimSpace(status))
	if knownStatus[lower] {
		return lower
	}
	return status
}

func normalizeOutcome(outcome string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(outcome))
	return lower, knownOutcome[lower]
}

// defaultKeyOrder puts correlation first, then conversation fields, then errors.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"rid_full",
	"ts_unix_nano",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"username",
	"handler",
	"action",
	"trigger",
	"from_state",
	"to_state",
	"state",
	"query",
	"results",
	"selection",
	"file",
	"replies",
	"request_id",
	"path",
	"outcome",
	"duration_ms",
	"queue",
	"worker",
	"mode",
	"listen",
	"public_url",
	"http_code",
	"driver",
	"db",
	"host",
	"err",
	"err_code",
	"cause",
	"retryable",
	"rate_limited",
}

package mqtt

import "strings"

// TopicPrefixGELF is the default base for GELF topics.
const TopicPrefixGELF = "graylog/gelf"

// Topics provides builders for GELF MQTT topics.
//
//	topic := mqtt.Topics{}.GELF("", "web-01.example.com")
//	// Returns: "graylog/gelf/web-01_example_com"
type Topics struct{}

// GELF returns the topic a payload from host is published on. An empty
// prefix selects TopicPrefixGELF. An empty host publishes on the prefix
// itself.
func (Topics) GELF(prefix, host string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		prefix = TopicPrefixGELF
	}
	segment := TopicSegment(host)
	if segment == "" {
		return prefix
	}
	return prefix + "/" + segment
}

// TopicSegment makes s safe to use as a single topic level: the level
// separator, wildcards, and dots become underscores.
func TopicSegment(s string) string {
	return segmentReplacer.Replace(strings.TrimSpace(s))
}

var segmentReplacer = strings.NewReplacer(
	"/", "_",
	"+", "_",
	"#", "_",
	".", "_",
	" ", "_",
)

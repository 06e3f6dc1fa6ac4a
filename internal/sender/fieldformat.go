package sender

import (
	"strconv"
	"strings"

	"thingspeakagent/internal/collector"
)

// EncodeFields renders a reading as the channel's update payload:
//
//	field1=<cpu>&field2=<ram>&field3=<temp>&field4=<tasks>&field5=<rssi>
//
// Values are plain numbers and are not escaped.
func EncodeFields(r *collector.Reading) string {
	values := [5]string{
		collector.FormatFloat(r.CPUPercent),
		collector.FormatFloat(r.RAMPercent),
		collector.FormatFloat(r.CPUTempC),
		strconv.Itoa(r.TaskCount),
		collector.FormatRSSI(r.RSSIDbm),
	}

	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString("field")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('=')
		b.WriteString(v)
	}
	return b.String()
}

// MaskTopic hides the write key in a channels/<id>/publish/<key> topic so
// it can be logged.
func MaskTopic(topic string) string {
	i := strings.LastIndex(topic, "/publish/")
	if i < 0 {
		return topic
	}
	return topic[:i] + "/publish/****"
}

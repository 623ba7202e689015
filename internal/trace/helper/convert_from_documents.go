package helper

import (
	"fmt"

	"github.com/mdrideout/junjo-server-sub000/internal/spanstore/client"
	spanModel "github.com/mdrideout/junjo-server-sub000/internal/trace/model"
)

// ConvertFromDocuments converts raw span documents returned by the span
// index into typed spans.
func ConvertFromDocuments(res []map[string]interface{}) ([]spanModel.Span, error) {
	spans := make([]spanModel.Span, 0, len(res))
	for _, hit := range res {
		doc := spanModel.Span{}

		id, ok := hit["_id"].(string)
		if ok {
			doc.Id = id
		}

		spanId, ok := hit["span_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert span_id to string %s", hit["span_id"])
		}
		doc.SpanID = spanId

		parentSpanId, ok := hit["parent_span_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert parent_span_id to string %s", hit["parent_span_id"])
		}
		doc.ParentSpanID = parentSpanId

		traceId, ok := hit["trace_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert trace_id to string %s", hit["trace_id"])
		}
		doc.TraceID = traceId

		serviceName, ok := hit["service_name"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert service_name to string %s", hit["service_name"])
		}
		doc.ServiceName = serviceName

		name, ok := hit["name"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert name to string %s", hit["name"])
		}
		doc.Name = name

		if spanKind, ok := hit["span_kind"].(string); ok {
			doc.SpanKind = spanKind
		}

		startTime, ok := hit["start_time"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert start_time to string %s", hit["start_time"])
		}
		startTimeParsed, err := client.NormalizeTimestampToNanoseconds(startTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start_time to time.Time")
		}
		doc.StartTime = startTimeParsed

		endTime, ok := hit["end_time"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert end_time to string %s", hit["end_time"])
		}
		endTimeParsed, err := client.NormalizeTimestampToNanoseconds(endTime)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end_time to time.Time")
		}
		doc.EndTime = endTimeParsed

		doc.Attributes = convertAttributes(hit["attributes"])

		events, err := convertEvents(hit["events"])
		if err != nil {
			return nil, err
		}
		doc.Events = events

		spans = append(spans, doc)
	}
	return spans, nil
}

func convertAttributes(raw interface{}) map[string]string {
	attributes := make(map[string]string)
	rawMap, ok := raw.(map[string]interface{})
	if !ok {
		return attributes
	}
	for key, value := range rawMap {
		stringValue, ok := value.(string)
		if !ok {
			stringValue = fmt.Sprintf("%v", value)
		}
		attributes[key] = stringValue
	}
	return attributes
}

func convertEvents(raw interface{}) ([]spanModel.SpanEvent, error) {
	if raw == nil {
		return nil, nil
	}
	rawList, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("failed to convert events to list %v", raw)
	}
	events := make([]spanModel.SpanEvent, 0, len(rawList))
	for _, rawEvent := range rawList {
		eventMap, ok := rawEvent.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("failed to convert event to map %v", rawEvent)
		}
		event := spanModel.SpanEvent{}
		if name, ok := eventMap["name"].(string); ok {
			event.Name = name
		}
		if timestamp, ok := eventMap["timestamp"].(string); ok {
			parsed, err := client.NormalizeTimestampToNanoseconds(timestamp)
			if err != nil {
				return nil, fmt.Errorf("failed to parse event timestamp to time.Time")
			}
			event.Timestamp = parsed
		}
		event.Attributes = convertAttributes(eventMap["attributes"])
		events = append(events, event)
	}
	return events, nil
}

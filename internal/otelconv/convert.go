package otelconv

import (
	"encoding/hex"
	"strconv"
	"time"

	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	tracev1 "go.opentelemetry.io/proto/otlp/trace/v1"

	spanModel "github.com/mdrideout/junjo-server-sub000/internal/trace/model"
)

const unknownServiceName = "Never Assigned"

// ConvertResourceSpans flattens one OTLP resource-spans batch into typed
// spans, keyed by the resource's service.name. Junjo recordings arrive in
// this shape; attribute values are preserved as strings so JSON-valued
// attributes like the graph structure survive bit-exact.
func ConvertResourceSpans(resourceSpan *tracev1.ResourceSpans) []spanModel.Span {
	serviceName := getServiceName(resourceSpan)
	var spans []spanModel.Span
	for _, scopeSpan := range resourceSpan.ScopeSpans {
		for _, span := range scopeSpan.Spans {
			spans = append(spans, getTypedSpan(span, serviceName))
		}
	}
	return spans
}

// GroupByTraceID buckets converted spans per trace. Spans under one
// resource span are not guaranteed to share a trace id.
func GroupByTraceID(spans []spanModel.Span) map[string][]spanModel.Span {
	grouped := make(map[string][]spanModel.Span)
	for _, span := range spans {
		grouped[span.TraceID] = append(grouped[span.TraceID], span)
	}
	return grouped
}

func getServiceName(resourceSpan *tracev1.ResourceSpans) string {
	serviceName := unknownServiceName
	if resourceSpan.Resource == nil {
		return serviceName
	}
	for _, attr := range resourceSpan.Resource.Attributes {
		if attr.Key == "service.name" {
			serviceName = attr.Value.GetStringValue()
		}
	}
	return serviceName
}

func getTypedSpan(span *tracev1.Span, serviceName string) spanModel.Span {
	return spanModel.Span{
		SpanID:       hex.EncodeToString(span.SpanId),
		ParentSpanID: hex.EncodeToString(span.ParentSpanId),
		TraceID:      hex.EncodeToString(span.TraceId),
		ServiceName:  serviceName,
		Name:         span.Name,
		SpanKind:     span.Kind.String(),
		StartTime:    time.Unix(0, int64(span.StartTimeUnixNano)),
		EndTime:      time.Unix(0, int64(span.EndTimeUnixNano)),
		Attributes:   getAttributes(span.Attributes),
		Events:       getEvents(span),
	}
}

func getEvents(span *tracev1.Span) []spanModel.SpanEvent {
	events := make([]spanModel.SpanEvent, len(span.Events))
	for i, event := range span.Events {
		events[i] = spanModel.SpanEvent{
			Name:       event.Name,
			Attributes: getAttributes(event.Attributes),
			Timestamp:  time.Unix(0, int64(event.TimeUnixNano)),
		}
	}
	return events
}

func getAttributes(keyValues []*commonv1.KeyValue) map[string]string {
	attributes := make(map[string]string)
	for _, attribute := range keyValues {
		attributes[attribute.Key] = attributeValueToString(attribute.Value)
	}
	return attributes
}

func attributeValueToString(value *commonv1.AnyValue) string {
	if value == nil {
		return ""
	}
	switch typed := value.Value.(type) {
	case *commonv1.AnyValue_StringValue:
		return typed.StringValue
	case *commonv1.AnyValue_BoolValue:
		return strconv.FormatBool(typed.BoolValue)
	case *commonv1.AnyValue_IntValue:
		return strconv.FormatInt(typed.IntValue, 10)
	case *commonv1.AnyValue_DoubleValue:
		return strconv.FormatFloat(typed.DoubleValue, 'f', -1, 64)
	default:
		return value.String()
	}
}

package spanstore

func traceIDQueryBuilder(traceID string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"trace_id": map[string]interface{}{
					"value": traceID,
				},
			},
		},
		"sort": []map[string]interface{}{
			{"start_time": map[string]interface{}{"order": "asc"}},
		},
	}
}

func serviceNameQueryBuilder(serviceName string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"service_name": map[string]interface{}{
					"value": serviceName,
				},
			},
		},
		"sort": []map[string]interface{}{
			{"start_time": map[string]interface{}{"order": "asc"}},
		},
	}
}

func spanIDsQueryBuilder(spanIDs []string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"terms": map[string]interface{}{
				"span_id": spanIDs,
			},
		},
	}
}

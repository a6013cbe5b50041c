package fmuresults

// Schema returns the machine-readable JSON-schema document describing the
// metadata format. The document is derived from the Go model at call time,
// so vocabularies and version markers can never drift from the validator.
//
// Date-bearing fields carry an explicit "format": "date-time" marker, and
// the fmu block declares the aggregation/realization mutual exclusion as a
// schema-level "dependencies" entry, so external consumers can enforce
// both without reimplementing the validation engine.
func Schema() map[string]any {
	return map[string]any{
		"$id":         SchemaURL,
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       "fmu_results",
		"version":     SchemaVersion,
		"type":        "object",
		"required":    []string{"$schema", "version", "source", "tracklog", "class", "fmu", "access", "masterdata"},
		"definitions": schemaDefinitions(),
		"properties": map[string]any{
			"$schema": map[string]any{"type": "string"},
			"version": map[string]any{"type": "string", "pattern": versionStrPattern.String()},
			"source":  map[string]any{"type": "string", "const": SourceTag},
			"class":   map[string]any{"$ref": "#/definitions/object_kind"},
			"tracklog": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    map[string]any{"$ref": "#/definitions/tracklog_event"},
			},
			"fmu":        fmuSchema(),
			"file":       fileSchema(),
			"data":       dataSchema(),
			"display":    map[string]any{"type": "object"},
			"access":     accessSchema(),
			"masterdata": map[string]any{"type": "object"},
		},
	}
}

func schemaDefinitions() map[string]any {
	return map[string]any{
		"classification":      enumSchema(KnownClassifications),
		"content":             enumSchema(KnownContents),
		"fmu_context":         enumSchema(KnownContexts),
		"tracklog_event_type": enumSchema(KnownEventTypes),
		"object_kind":         enumSchema(KnownObjectKinds),
		"uuid": map[string]any{
			"type":   "string",
			"format": "uuid",
		},
		"tracklog_event": map[string]any{
			"type":     "object",
			"required": []string{"datetime", "event", "user"},
			"properties": map[string]any{
				"datetime": map[string]any{"type": "string", "format": "date-time"},
				"event":    map[string]any{"$ref": "#/definitions/tracklog_event_type"},
				"user":     map[string]any{"type": "object"},
				"sysinfo":  map[string]any{"type": "object"},
			},
		},
	}
}

func fmuSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"case", "context"},
		"properties": map[string]any{
			"case":        map[string]any{"type": "object"},
			"context":     map[string]any{"type": "object"},
			"ensemble":    map[string]any{"type": "object"},
			"iteration":   map[string]any{"type": "object"},
			"realization": map[string]any{"type": "object"},
			"aggregation": map[string]any{"type": "object"},
			"workflow":    map[string]any{"type": "object"},
			"entity":      map[string]any{"type": "object"},
			"ert":         map[string]any{"type": "object"},
		},
		"dependencies": map[string]any{
			"aggregation": map[string]any{
				"not": map[string]any{"required": []string{"realization"}},
			},
			"realization": map[string]any{
				"not": map[string]any{"required": []string{"aggregation"}},
			},
		},
	}
}

func fileSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"relative_path", "checksum_md5"},
		"properties": map[string]any{
			"absolute_path": map[string]any{"type": "string"},
			"relative_path": map[string]any{"type": "string"},
			"checksum_md5":  map[string]any{"type": "string", "pattern": md5HexPattern.String()},
			"size_bytes":    map[string]any{"type": "integer"},
		},
	}
}

func dataSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"name", "content", "format"},
		"properties": map[string]any{
			"name":    map[string]any{"type": "string"},
			"content": map[string]any{"$ref": "#/definitions/content"},
			"format":  map[string]any{"type": "string"},
			"time": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"t0": timestampSchema(),
					"t1": timestampSchema(),
				},
			},
		},
	}
}

func timestampSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"value"},
		"properties": map[string]any{
			"value": map[string]any{"type": "string", "format": "date-time"},
			"label": map[string]any{"type": "string"},
		},
	}
}

func accessSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"asset"},
		"properties": map[string]any{
			"asset":          map[string]any{"type": "object"},
			"classification": map[string]any{"$ref": "#/definitions/classification"},
			"ssdl":           map[string]any{"type": "object"},
		},
	}
}

func enumSchema[T ~string](values []T) map[string]any {
	enum := make([]string, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}
	return map[string]any{"type": "string", "enum": enum}
}

package scoring

// Schema lists the feature fields every FeatureVector carries, in canonical
// order. Candidate expressions may reference these names and nothing else.
var Schema = []string{
	"return_1h",
	"return_6h",
	"return_24h",
	"rsi_14",
	"volume_ratio",
	"news_sentiment",
}

var schemaSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Schema))
	for _, f := range Schema {
		set[f] = struct{}{}
	}
	return set
}()

// IsSchemaField reports whether name is part of the fixed feature schema.
func IsSchemaField(name string) bool {
	_, ok := schemaSet[name]
	return ok
}

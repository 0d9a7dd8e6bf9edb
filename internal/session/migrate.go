package session

// CurrentVersion is the schema version this build writes.
//
// History:
//
//	v1: initial schema; tab entries used a "file" key
//	v2: tab key renamed "file" -> "path", unsavedSnapshot added
const CurrentVersion = 2

// migrations upgrade a raw decoded document one version step at a time.
// Index i migrates version i+1 to i+2.
var migrations = []func(map[string]any){
	migrateV1TabKeys,
}

// migrate applies in-order steps until the raw document reaches
// CurrentVersion. Returns false for versions it does not recognize; the
// caller treats that as corruption.
func migrate(raw map[string]any) bool {
	version, ok := intField(raw, "version")
	if !ok || version < 1 || version > CurrentVersion {
		return false
	}
	for version < CurrentVersion {
		migrations[version-1](raw)
		version++
		raw["version"] = version
	}
	return true
}

// migrateV1TabKeys renames the v1 "file" tab key to "path".
func migrateV1TabKeys(raw map[string]any) {
	tabs, ok := raw["tabs"].([]any)
	if !ok {
		return
	}
	for _, t := range tabs {
		tab, ok := t.(map[string]any)
		if !ok {
			continue
		}
		if file, ok := tab["file"]; ok {
			if _, exists := tab["path"]; !exists {
				tab["path"] = file
			}
			delete(tab, "file")
		}
	}
}

// intField reads a JSON number field as an int.
func intField(raw map[string]any, key string) (int, bool) {
	switch v := raw[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

package detect

import "sort"

// SchemaChanges describes how field detection shifted between two scans of
// the same entity type.
type SchemaChanges struct {
	AddedFields   []string
	RemovedFields []string
	ChangedFields []string
	OldMapping    FieldMapping
	NewMapping    FieldMapping
	// Stable is true iff no binding changed or disappeared. Added fields
	// alone do not break stability.
	Stable bool
}

// DetectSchemaChanges diffs two field mappings for the same entity type.
func DetectSchemaChanges(oldMapping, newMapping FieldMapping) SchemaChanges {
	changes := SchemaChanges{
		OldMapping: oldMapping,
		NewMapping: newMapping,
	}

	for field := range newMapping {
		if _, ok := oldMapping[field]; !ok {
			changes.AddedFields = append(changes.AddedFields, field)
		}
	}
	for field, oldCol := range oldMapping {
		newCol, ok := newMapping[field]
		switch {
		case !ok:
			changes.RemovedFields = append(changes.RemovedFields, field)
		case newCol != oldCol:
			changes.ChangedFields = append(changes.ChangedFields, field)
		}
	}

	sort.Strings(changes.AddedFields)
	sort.Strings(changes.RemovedFields)
	sort.Strings(changes.ChangedFields)

	changes.Stable = len(changes.ChangedFields) == 0 && len(changes.RemovedFields) == 0
	return changes
}

// Package metadata holds the value model shared by scrapers and the merge
// engine: tri-state field values, well-formedness verdicts, ordered stream
// records and the unit normalization applied to technical metadata.
//
// A field value is concrete, NotApplicable or Unresolved:
//
//	s := metadata.NewStream()
//	s.Set(metadata.FieldStreamType, metadata.Of("audio"))
//	s.Set(metadata.FieldWidth, metadata.NotApplicable)
//	s.Set(metadata.FieldNumChannels, metadata.Unresolved)
//
// Rendering drops NotApplicable fields and substitutes placeholders for
// unresolved ones ("0" for numeric fields, "(:unav)" otherwise).
package metadata

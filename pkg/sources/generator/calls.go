package generator

import "iter"

// Call record vocabulary.
var (
	Countries = []string{"GRE", "ITA", "UK", "ALB", "EU"}
	RatePlans = []string{"RPLAN100", "RPLAN10", "RPLAN30"}
	CallTypes = []string{"VOICE", "DATA"}
)

// CallRecordColumns names the sequences returned by CallRecords.
var CallRecordColumns = []string{"origin", "destination", "rate_plan", "type", "duration", "cost"}

// CallRecords returns the column sequences of a telecom call-record table:
// origin and destination countries, a rate plan, a call type, a duration in
// seconds and a cost. The same seed always yields the same rows.
//
//	table, err := dataframe.FromSequences(generator.CallRecords(7)...).
//	    ColumnNames(generator.CallRecordColumns...).
//	    Size(10000).
//	    Build()
func CallRecords(seed uint64) []iter.Seq[any] {
	rng := NewRand(seed)
	return []iter.Seq[any]{
		Choice(rng, Countries...),
		Choice(rng, Countries...),
		Choice(rng, RatePlans...),
		Choice(rng, CallTypes...),
		Floats(rng, 1, 3600),
		Floats(rng, 0, 25),
	}
}

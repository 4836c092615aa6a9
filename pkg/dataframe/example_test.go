package dataframe_test

import (
	"fmt"

	"github.com/christos-karalis/dataframe/pkg/dataframe"
	"github.com/christos-karalis/dataframe/pkg/sources/generator"
)

func ExampleFromRows() {
	table, err := dataframe.FromRows([][]any{
		{"GRE", "VOICE", 120.0},
		{"ITA", "DATA", 30.0},
		{"GRE", "VOICE", 60.0},
	}).ColumnNames("country", "type", "duration").Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	groups, err := table.GroupByNames(false, "country")
	if err != nil {
		fmt.Println(err)
		return
	}
	sums, err := groups.SumByName("duration")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(sums)
	// Output:
	// country	duration
	// GRE	180
	// ITA	30
}

func ExampleTable_Sort() {
	table, _ := dataframe.FromSequences(generator.Slice(3, 1, 2)).
		ColumnNames("n").
		Build()

	sorted, _ := table.Sort(0, false)
	fmt.Print(sorted)
	// Output:
	// n
	// 3
	// 2
	// 1
}

func ExampleTable_ColumnIndex() {
	table, _ := dataframe.FromRows([][]any{{"a", 1}}).ColumnNames("name", "n").Build()

	_, err := table.Column(table.ColumnIndex("missing"))
	fmt.Println(err)
	// Output:
	// index: column -1 out of range [0, 2)
}

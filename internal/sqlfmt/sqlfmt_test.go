package sqlfmt

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "simple select",
			query: "select id, name from users where active = 1",
			want:  "SELECT id, name\nFROM users\nWHERE active = 1",
		},
		{
			name:  "clauses on own lines",
			query: "select region, count(*) from orders group by region order by region limit 10",
			want:  "SELECT region, count(*)\nFROM orders\nGROUP BY region\nORDER BY region\nLIMIT 10",
		},
		{
			name:  "join glued to its prefix",
			query: "select a.x from a left join b on a.id = b.id",
			want:  "SELECT a.x\nFROM a\nLEFT JOIN b ON a.id = b.id",
		},
		{
			name:  "bare join starts a line",
			query: "select a.x from a join b on a.id = b.id",
			want:  "SELECT a.x\nFROM a\nJOIN b ON a.id = b.id",
		},
		{
			name:  "string literals untouched",
			query: "select name from t where note = 'select from where'",
			want:  "SELECT name\nFROM t\nWHERE note = 'select from where'",
		},
		{
			name:  "whitespace collapsed",
			query: "select   *\n\tfrom   t",
			want:  "SELECT *\nFROM t",
		},
		{
			name:  "non sql passes through",
			query: "not really sql at all",
			want:  "NOT really sql at ALL",
		},
		{
			name:  "empty input",
			query: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.query)
			if got != tt.want {
				t.Errorf("Format(%q)\n got: %q\nwant: %q", tt.query, got, tt.want)
			}
		})
	}
}

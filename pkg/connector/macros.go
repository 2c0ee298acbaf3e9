package connector

// Snowflake string functions DuckDB lacks, installed as macros once per
// engine handle. CREATE OR REPLACE keeps the bootstrap idempotent.
var engineMacros = []string{
	`CREATE OR REPLACE MACRO initcap(s) AS
		array_to_string(list_transform(string_split(s, ' '),
			w -> upper(substr(w, 1, 1)) || lower(substr(w, 2))), ' ')`,

	// Classic soundex: keep the first letter, map the rest onto digit
	// classes, collapse runs, drop zeros and right-pad to four characters.
	`CREATE OR REPLACE MACRO soundex(s) AS
		upper(substr(s, 1, 1)) ||
		substr(rpad(replace(regexp_replace(
			substr(translate(upper(s), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', '01230120022455012623010202'), 2),
			'(.)\1+', '\1', 'g'), '0', ''), 3, '0'), 1, 3)`,
}

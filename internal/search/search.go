package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/compdb/internal/store"
)

type Result struct {
	RunID     string
	Seq       int
	CreatedAt string
	File      string
	Directory string
	Snippet   string
	Rank      float64
}

func (r Result) Key() string {
	return store.FormatKey(r.RunID, r.Seq)
}

type Options struct {
	Query string
	RunID string // "" = all runs
	Limit int
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// ftsOperators pass through to FTS5 unquoted.
var ftsOperators = map[string]bool{"AND": true, "OR": true, "NOT": true}

// ftsQuery quotes every term that is not a plain word, so file names and
// switches like "main.cpp" or "/EHsc" are matched as phrases instead of
// being parsed as FTS5 syntax.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		if ftsOperators[t] {
			continue
		}
		plain := true
		for _, r := range t {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '*' {
				plain = false
				break
			}
		}
		if !plain {
			terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
		}
	}
	return strings.Join(terms, " ")
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 {
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := max(runePos-contextChars, 0)
	end := min(runePos+len(qRunes)+contextChars, len(runes))
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

// Search finds recorded entries whose file or arguments match the query.
func Search(db *store.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}
	if containsCJK(opts.Query) {
		return searchLike(db, opts)
	}
	return searchFTS(db, opts)
}

// ListAll returns the entries of a run (or all runs) in log order.
func ListAll(db *store.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = -1
	}
	var conditions []string
	var args []interface{}
	if opts.RunID != "" {
		conditions = append(conditions, "e.run_id = ?")
		args = append(args, opts.RunID)
	}
	where := "1=1"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT e.run_id, e.seq, r.created_at, e.file, e.directory, e.arguments
		FROM entries e
		JOIN runs r ON e.run_id = r.run_id
		WHERE %s
		ORDER BY r.created_at DESC, e.seq
		LIMIT ?
	`, where)
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()
	return scanResults(rows, false)
}

func searchFTS(db *store.DB, opts Options) ([]Result, error) {
	conditions := []string{"entries_fts MATCH ?"}
	args := []interface{}{ftsQuery(opts.Query)}

	if opts.RunID != "" {
		conditions = append(conditions, "e.run_id = ?")
		args = append(args, opts.RunID)
	}

	query := fmt.Sprintf(`
		SELECT
			e.run_id,
			e.seq,
			r.created_at,
			e.file,
			e.directory,
			snippet(entries_fts, 1, '>>>', '<<<', '...', 16) AS snip,
			bm25(entries_fts, 2.0, 1.0) AS rank
		FROM entries_fts
		JOIN entries e ON entries_fts.rowid = e.rowid
		JOIN runs r ON e.run_id = r.run_id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	return scanResults(rows, true)
}

func searchLike(db *store.DB, opts Options) ([]Result, error) {
	pattern := "%" + opts.Query + "%"
	conditions := []string{"(e.file LIKE ? OR e.arguments LIKE ?)"}
	args := []interface{}{pattern, pattern}

	if opts.RunID != "" {
		conditions = append(conditions, "e.run_id = ?")
		args = append(args, opts.RunID)
	}

	query := fmt.Sprintf(`
		SELECT e.run_id, e.seq, r.created_at, e.file, e.directory, e.arguments
		FROM entries e
		JOIN runs r ON e.run_id = r.run_id
		WHERE %s
		ORDER BY r.created_at DESC, e.seq
		LIMIT ?
	`, strings.Join(conditions, " AND "))
	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	results, err := scanResults(rows, false)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Snippet = makeSnippet(results[i].Snippet, opts.Query, 30)
	}
	return results, nil
}

// scanResults reads rows of (run_id, seq, created_at, file, directory,
// text[, rank]); text lands in Snippet.
func scanResults(rows *sql.Rows, ranked bool) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		dest := []any{&r.RunID, &r.Seq, &r.CreatedAt, &r.File, &r.Directory, &r.Snippet}
		if ranked {
			dest = append(dest, &r.Rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

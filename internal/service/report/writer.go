package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"TickerPulse/internal/domain/models"
	applogger "TickerPulse/pkg/logger"
	"TickerPulse/pkg/util"
)

// Writer renders per-symbol HTML reports and the overview index into the
// reports directory. File names carry the run id prefix so retention can
// age them out together with the other run artifacts.
type Writer struct {
	dir    string
	logger *applogger.Logger
}

func NewWriter(dir string, logger *applogger.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

type symbolPage struct {
	Symbol    string
	Company   string
	Narrative string
	Score     int
	BarWidth  float64
	BarColor  string
	Posts     []postRow
}

type postRow struct {
	Title    string
	Upvotes  int
	Comments int
	URL      string
}

type indexPage struct {
	Groups []indexGroup
}

type indexGroup struct {
	Date    string
	Entries []indexEntry
}

type indexEntry struct {
	File   string
	Symbol string
}

var symbolTmpl = template.Must(template.New("symbol").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Stock Report - {{.Symbol}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: Arial, sans-serif; margin: 20px; background: #f8f9fa; }
h1, h2 { color: #333; }
.card { background: white; padding: 20px; margin-bottom: 20px; border-radius: 8px;
        box-shadow: 0 2px 6px rgba(0,0,0,0.1); }
.narrative { white-space: pre-wrap; }
.sentiment-bar { height: 20px; background: #ddd; border-radius: 10px; overflow: hidden; }
.sentiment-fill { height: 100%; width: {{printf "%.1f" .BarWidth}}%; background: {{.BarColor}}; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 8px; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h1>Stock Report - {{.Symbol}} ({{.Company}})</h1>

<div class="card">
<h2>Analysis</h2>
<div class="narrative">{{.Narrative}}</div>
<div class="sentiment-bar">
  <div class="sentiment-fill"></div>
</div>
</div>

<div class="card">
<h2>Posts</h2>
<table>
<thead>
<tr><th>Title</th><th>Upvotes</th><th>Comments</th><th>URL</th></tr>
</thead>
<tbody>
{{range .Posts}}<tr>
<td>{{.Title}}</td>
<td>{{.Upvotes}}</td>
<td>{{.Comments}}</td>
<td><a href="{{.URL}}" target="_blank">Link</a></td>
</tr>
{{end}}</tbody>
</table>
</div>

</body>
</html>
`))

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Hot Stocks</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: Arial, sans-serif; margin: 20px; background: #f8f9fa; }
h1 { color: #333; }
.card { background: white; padding: 20px; margin-bottom: 20px; border-radius: 8px;
        box-shadow: 0 2px 6px rgba(0,0,0,0.1); }
</style>
</head>
<body>
<h1>Hot Stocks</h1>
{{range .Groups}}<div class="card"><h2>{{.Date}}</h2><ul>
{{range .Entries}}<li><a href="{{.File}}">{{.Symbol}}</a></li>
{{end}}</ul></div>
{{end}}</body>
</html>
`))

// WriteSymbolReport renders one symbol's report to
// <runID>_<SYMBOL>-report.html and returns the file path.
func (w *Writer) WriteSymbolReport(runID string, bundle *models.SymbolPosts, sr *models.SentimentReport) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	posts := make([]models.Post, len(bundle.Posts))
	copy(posts, bundle.Posts)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Upvotes > posts[j].Upvotes
	})

	page := symbolPage{
		Symbol:   bundle.Symbol,
		Company:  bundle.Company,
		Score:    0,
		BarWidth: 50,
		BarColor: sentimentColor(0),
	}
	if sr != nil {
		page.Narrative = sr.Narrative
		page.Score = sr.Score
		page.BarWidth = barWidth(sr.Score)
		page.BarColor = sentimentColor(sr.Score)
	}
	for _, p := range posts {
		page.Posts = append(page.Posts, postRow{
			Title:    p.Title,
			Upvotes:  p.Upvotes,
			Comments: len(p.Comments),
			URL:      p.URL,
		})
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s_%s-report.html", runID, bundle.Symbol))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := symbolTmpl.Execute(f, page); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	if w.logger != nil {
		w.logger.Info("report written",
			applogger.String("symbol", bundle.Symbol),
			applogger.String("path", path),
		)
	}
	return path, nil
}

// WriteIndex rebuilds index.html from all reports on disk, grouped by run id,
// newest group first.
func (w *Writer) WriteIndex() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read reports dir: %w", err)
	}

	grouped := make(map[string][]indexEntry)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "-report.html") {
			continue
		}
		prefix, symbol, ok := splitReportName(e.Name())
		if !ok {
			continue
		}
		grouped[prefix] = append(grouped[prefix], indexEntry{File: e.Name(), Symbol: symbol})
	}

	prefixes := make([]string, 0, len(grouped))
	for prefix := range grouped {
		prefixes = append(prefixes, prefix)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(prefixes)))

	page := indexPage{}
	for _, prefix := range prefixes {
		t, err := util.ParseRunID(prefix)
		if err != nil {
			continue
		}
		group := indexGroup{Date: t.Format("2006-01-02 15:04")}
		entries := grouped[prefix]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
		group.Entries = entries
		page.Groups = append(page.Groups, group)
	}

	path := filepath.Join(w.dir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer f.Close()

	return indexTmpl.Execute(f, page)
}

// splitReportName parses <runid>_<SYMBOL>-report.html.
func splitReportName(name string) (prefix, symbol string, ok bool) {
	base := strings.TrimSuffix(name, "-report.html")
	i := strings.IndexByte(base, '_')
	if i <= 0 || i == len(base)-1 {
		return "", "", false
	}
	prefix, symbol = base[:i], base[i+1:]
	if _, err := util.ParseRunID(prefix); err != nil {
		return "", "", false
	}
	return prefix, symbol, true
}

func barWidth(score int) float64 {
	w := float64(score+10) / 20 * 100
	if w < 0 {
		w = 0
	}
	if w > 100 {
		w = 100
	}
	return w
}

func sentimentColor(score int) string {
	switch {
	case score > 1:
		return "#4caf50"
	case score < -1:
		return "#f44336"
	default:
		return "#ffc107"
	}
}

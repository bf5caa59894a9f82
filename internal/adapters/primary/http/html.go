package http

import (
	"html/template"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// basePage is the chrome around every rendered markdown document: GitHub's
// stylesheet layering plus the live-reload script. The script long-polls
// /__livereload; a reload answer refreshes the page, a keepalive answer
// immediately resubscribes.
const basePage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/style.css">
<script>
(function () {
  var poll = function () {
    fetch('/__livereload?page=' + encodeURIComponent(location.pathname))
      .then(function (res) { return res.json(); })
      .then(function (msg) {
        if (msg.reload) {
          location.reload();
        } else {
          poll();
        }
      })
      .catch(function () { setTimeout(poll, 2000); });
  };
  poll();
})();
</script>
</head>
<body>
<div class="page">
  <div class="preview-header">
    <span class="file-name">{{.Name}}</span>
  </div>
  <article class="markdown-body">{{.Content}}</article>
</div>
</body>
</html>
`

const errorPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
<div class="page">
  <article class="markdown-body">
    <h1>{{.Heading}}</h1>
    <p>{{.Message}}</p>
  </article>
</div>
</body>
</html>
`

var (
	basePageTmpl  = template.Must(template.New("page").Parse(basePage))
	errorPageTmpl = template.Must(template.New("error").Parse(errorPage))
	titleCaser    = cases.Title(language.Und)
)

type pageData struct {
	Title   string
	Name    string
	Content template.HTML
}

type errorData struct {
	Title   string
	Heading string
	Message string
}

// writePage writes a rendered markdown fragment wrapped in the preview chrome.
func writePage(w http.ResponseWriter, status int, title, name string, content []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = basePageTmpl.Execute(w, pageData{
		Title:   title,
		Name:    name,
		Content: template.HTML(content), // #nosec G203 - converter output is sanitized
	})
}

// writeErrorPage writes a friendly HTML error scoped to one request.
func writeErrorPage(w http.ResponseWriter, status int, heading, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorPageTmpl.Execute(w, errorData{
		Title:   "mdlive",
		Heading: heading,
		Message: message,
	})
}

// displayTitle derives a page title when the frontmatter has none:
// "getting-started.md" becomes "Getting Started".
func displayTitle(requestPath string) string {
	name := strings.TrimSuffix(filepath.Base(requestPath), filepath.Ext(requestPath))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	if name == "" || name == "." || name == "/" {
		return "mdlive"
	}
	return titleCaser.String(name)
}

package http

import (
	"html"
	"html/template"
	"regexp"
	"strings"
	"time"
)

var paragraphRe = regexp.MustCompile(`(?:\r\n|\r|\n){2,}`)

// nl2br escapes the body text, wraps blank-line-separated paragraphs in
// <p> and turns remaining newlines into <br>.
func nl2br(value string) template.HTML {
	escaped := html.EscapeString(value)
	paragraphs := paragraphRe.Split(escaped, -1)
	for i, p := range paragraphs {
		paragraphs[i] = "<p>" + strings.ReplaceAll(p, "\n", "<br>\n") + "</p>"
	}
	return template.HTML(strings.Join(paragraphs, "\n\n"))
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// postItem bundles a post view with the page's CSRF token so the shared
// post fragment can render its comment form.
func postItem(post interface{}, csrfToken string) map[string]interface{} {
	return map[string]interface{}{
		"Post":      post,
		"CSRFToken": csrfToken,
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"nl2br":      nl2br,
		"formatTime": formatTime,
		"postItem":   postItem,
	}
}

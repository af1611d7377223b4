package http

import (
	"html/template"
	"io"
)

type frameButton struct {
	Index  int
	Label  string
	Action string
	Target string
}

type framePage struct {
	Title     string
	Heading   string
	Subtitle  string
	ImageURL  string
	PostURL   string
	Buttons   []frameButton
	ShareText string
	BuyURL    string
}

var frameTemplate = template.Must(template.New("frame").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta property="fc:frame" content="vNext" />
    <meta property="fc:frame:image" content="{{.ImageURL}}" />
    <meta property="og:image" content="{{.ImageURL}}" />
{{- range .Buttons}}
    <meta property="fc:frame:button:{{.Index}}" content="{{.Label}}" />
    <meta property="fc:frame:button:{{.Index}}:action" content="{{.Action}}" />
    <meta property="fc:frame:button:{{.Index}}:target" content="{{.Target}}" />
{{- end}}
    <meta property="fc:frame:post_url" content="{{.PostURL}}" />
    <title>{{.Title}}</title>
  </head>
  <body>
    <h1>{{.Heading}}</h1>
{{- if .ShareText}}
    <p>Copy this text to share in your cast:</p>
    <pre>{{.ShareText}}</pre>
{{- else}}
    <p>{{.Subtitle}}</p>
{{- end}}
    <p><a href="{{.BuyURL}}">Buy $TABLEDADRIAN</a></p>
  </body>
</html>
`))

func renderFramePage(w io.Writer, page framePage) error {
	return frameTemplate.Execute(w, page)
}

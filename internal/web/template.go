package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/hollis/wakeword/internal/alarm"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>wakeword</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.idle { color: #888; }
.scheduled { color: green; font-weight: bold; }
.ringing { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>wakeword</h1>
<table>
<tr><th>State</th><td class="{{.StateClass}}">{{.State}}</td></tr>
{{if .TriggerTime}}<tr><th>Rings at</th><td>{{.TriggerTime}}</td></tr>{{end}}
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Platform</th><td class="{{if .Connected}}connected{{else}}disconnected{{end}}">{{if .Connected}}connected{{else}}disconnected{{end}} ({{.Broker}})</td></tr>
</table>
<p><a href="/index.json">json</a> | <a href="/metrics">metrics</a></p>
</body>
</html>
`

type indexData struct {
	State       string
	StateClass  string
	TriggerTime string
	Uptime      time.Duration
	Connected   bool
	Broker      string
}

func renderHTML(w io.Writer, v view) {
	data := indexData{
		State:     string(v.state),
		Uptime:    v.snap.Uptime(),
		Connected: v.connected,
		Broker:    v.snap.Config.Broker,
	}
	switch v.state {
	case alarm.StateScheduled:
		data.StateClass = "scheduled"
	case alarm.StateRinging:
		data.StateClass = "ringing"
	default:
		data.StateClass = "idle"
	}
	if v.hasTrig {
		data.TriggerTime = v.trigger.Format(timeFormat)
	}
	indexTmpl.Execute(w, data)
}

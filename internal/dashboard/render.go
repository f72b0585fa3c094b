// SPDX-License-Identifier: MIT

package dashboard

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/ManuGH/smsmanager/internal/charts"
	"github.com/ManuGH/smsmanager/internal/producer"
)

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.977 generate

//go:embed static
var staticFS embed.FS

func staticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// layoutData is the shell state around a page body.
type layoutData struct {
	Title string
	Lang  string
	Toast *Notice
}

// renderString renders c for a websocket frame.
func renderString(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// producerView is the state behind the producer page and its live updates.
type producerView struct {
	Producer    producer.Producer
	Breakdown   charts.Breakdown
	Donut       charts.DonutChart
	Area        charts.AreaChart
	EmptyText   string
	RefreshRate string
}

func newProducerView(p producer.Producer, progress producer.Progress, tag language.Tag, rate float64) producerView {
	b := charts.NewBreakdown(progress.NumberMessagesCreated, progress.NumberMessagesSent, progress.NumberMessagesFailed)
	return producerView{
		Producer:    p,
		Breakdown:   b,
		Donut:       charts.Donut(b, charts.FormatCount(tag, b.Total)),
		Area:        charts.Area(charts.Distribution(progress.MessageTimes)),
		EmptyText:   charts.EmptyText,
		RefreshRate: formatRate(rate),
	}
}

// requestLanguage picks the display language from Accept-Language.
func requestLanguage(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.English
	}
	return tags[0]
}

func pageTitle(title string) string {
	if title == "" {
		return "SMS Manager"
	}
	return title + " | SMS Manager"
}

func threadsLabel(p producer.Producer) string {
	if p.NumSenders == nil {
		return "maximum available"
	}
	return strconv.Itoa(*p.NumSenders)
}

func viewBox(w, h int) string {
	return fmt.Sprintf("0 0 %d %d", w, h)
}

// producerPath joins the dashboard route of a producer.
func producerPath(id string, parts ...string) string {
	return strings.Join(append([]string{"/producers", id}, parts...), "/")
}

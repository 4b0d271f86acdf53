package controllers

import (
	"bytes"
	"html/template"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"github.com/cppla/planner/middleware"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
	"github.com/cppla/planner/utils"
)

// Raw HTML inside notes is escaped by goldmark; the output is sanitized again before rendering.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var dayTemplate = template.Must(template.New("day").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Label}}</title>
<style>{{.CSS}}
body{font-family:sans-serif;background:var(--background-color);color:var(--text-color);margin:2rem}
section{background:var(--card-color);border:1px solid var(--border-color);border-radius:6px;padding:1rem;margin-bottom:1rem}
h1,h2{color:var(--primary-color)}
.done{text-decoration:line-through;color:var(--light-text)}
.hour{display:inline-block;min-width:5rem;color:var(--secondary-color)}
</style>
</head>
<body>
<h1>{{.Label}}</h1>
<section>
<h2>Tasks</h2>
{{if .Tasks}}<ul>{{range .Tasks}}<li{{if .Completed}} class="done"{{end}}>{{.Text}}</li>{{end}}</ul>{{else}}<p>No tasks.</p>{{end}}
</section>
<section>
<h2>Schedule</h2>
{{if .Events}}<ul>{{range .Events}}<li><span class="hour">{{.Label}}</span>{{.Title}}</li>{{end}}</ul>{{else}}<p>Nothing scheduled.</p>{{end}}
</section>
<section>
<h2>Notes</h2>
{{if .Note}}{{.Note}}{{else}}<p>No notes.</p>{{end}}
</section>
</body>
</html>
`))

// ExportController renders a standalone HTML document of one planner day.
type ExportController struct {
	db *gorm.DB
}

// NewExportController creates an ExportController.
func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{db: db}
}

type exportEvent struct {
	Label string
	Title string
}

type exportDay struct {
	Label  string
	CSS    template.CSS
	Tasks  []models.Task
	Events []exportEvent
	Note   template.HTML
}

// ExportDay writes the day page for ?date=, honoring ?time_format= and ?theme=.
func (e *ExportController) ExportDay(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	day, err := planner.ParseStorageDate(ctx.Query("date"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, err.Error())
		return
	}
	tf, err := planner.ParseTimeFormat(ctx.Query("time_format"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, err.Error())
		return
	}
	theme, err := planner.ParseTheme(ctx.Query("theme"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, err.Error())
		return
	}
	date := planner.FormatDateForStorage(day)

	page, err := e.loadDay(userID, date, tf)
	if err != nil {
		utils.Sugar.Errorw("export load failed", "user_id", userID, "date", date, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to load day")
		return
	}
	page.Label = day.Format("Monday, January 2, 2006")
	page.CSS = template.CSS(planner.PaletteFor(theme).CSSVariables())

	var buf bytes.Buffer
	if err := dayTemplate.Execute(&buf, page); err != nil {
		utils.Sugar.Errorw("export render failed", "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to render day")
		return
	}
	ctx.Header("Content-Disposition", `inline; filename="planner-`+date+`.html"`)
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (e *ExportController) loadDay(userID, date string, tf planner.TimeFormat) (*exportDay, error) {
	mine := e.db.Where("user_id = ? AND date = ?", userID, date).Session(&gorm.Session{})
	page := &exportDay{}

	var lists []models.TaskList
	if err := mine.Order("created_at ASC").Find(&lists).Error; err != nil {
		return nil, err
	}
	for _, l := range lists {
		page.Tasks = append(page.Tasks, l.Tasks...)
	}

	var events []models.Event
	if err := mine.Find(&events).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Hour < events[j].Hour })
	for _, ev := range events {
		page.Events = append(page.Events, exportEvent{Label: planner.FormatHour(ev.Hour, tf), Title: ev.Title})
	}

	var notes []models.Note
	if err := mine.Where("type = ?", planner.NoteDaily).Order("updated_at DESC").Limit(1).Find(&notes).Error; err != nil {
		return nil, err
	}
	if len(notes) > 0 && notes[0].Content != "" {
		html, err := renderMarkdown(notes[0].Content)
		if err != nil {
			return nil, err
		}
		page.Note = html
	}
	return page, nil
}

func renderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(utils.Sanitize(buf.String())), nil
}

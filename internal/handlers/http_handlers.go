package handlers

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"prizewheel/internal/models"
	"prizewheel/internal/services"
	"prizewheel/internal/wheel"
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the wheel service.
type HTTPHandler struct {
	service      *services.WheelService
	templates    *template.Template
	spinDuration time.Duration
}

// NewHTTPHandler creates a new HTTPHandler. spinDuration is the length of the
// wheel animation on the spin page.
func NewHTTPHandler(service *services.WheelService, templates *template.Template, spinDuration time.Duration) *HTTPHandler {
	registerValidators()
	return &HTTPHandler{
		service:      service,
		templates:    templates,
		spinDuration: spinDuration,
	}
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	buf := new(bytes.Buffer)
	err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData)
	if err != nil {
		logger.Infof("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	pageData["PageContent"] = template.HTML(buf.String())

	c.Header("Content-Type", "text/html; charset=utf-8")
	err = h.templates.ExecuteTemplate(c.Writer, "layout.html", pageData)
	if err != nil {
		logger.Infof("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.ShowWheel)
	router.GET("/admin", h.ShowAdmin)
	router.GET("/admin/export.csv", h.ExportPrizesCSV)
	router.POST("/upload-prizes-csv", h.UploadPrizesCSV)
	router.GET("/api/prizes", h.ListPrizes)
	router.GET("/spin", h.Spin)
	router.POST("/delete_prize", h.DeletePrize)
	router.POST("/save_admin_changes", h.SaveAdminChanges)
}

// segmentView carries what the page script needs to land on a segment of
// the wheel as drawn, whatever the server's list looks like by spin time.
type segmentView struct {
	Name        string
	Probability string
	SpinDegrees string
	Style       template.CSS
}

// ShowWheel renders the spin page with the wheel drawn from the current prizes.
func (h *HTTPHandler) ShowWheel(c *gin.Context) {
	data := gin.H{
		"title":      "Spin the wheel",
		"Script":     "wheel.js",
		"SpinMillis": h.spinDuration.Milliseconds(),
		"Transition": wheel.TransitionCSS(h.spinDuration),
		"Status":     "",
	}

	prizes, err := h.service.Prizes(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load prizes: %v", err)
		data["WheelStyle"] = wheelStyle(wheel.Build(nil))
		data["Empty"] = true
		data["Status"] = "Error loading wheel data."
		h.renderPage(c, data, "wheel.html")
		return
	}

	w := wheel.Build(prizes)
	segments := make([]segmentView, len(w.Segments))
	for i, s := range w.Segments {
		degrees, err := w.SpinDegrees(i)
		if err != nil {
			logger.Errorf("Segment %d has no rotation: %v", i, err)
			c.String(http.StatusInternalServerError, "Failed to build wheel")
			return
		}
		segments[i] = segmentView{
			Name:        s.Name,
			Probability: strconv.FormatFloat(s.Probability, 'f', -1, 64),
			SpinDegrees: strconv.FormatFloat(degrees, 'f', -1, 64),
			Style:       template.CSS("transform: rotate(" + wheel.FormatDegrees(s.LabelAngle()) + ")"),
		}
	}
	data["WheelStyle"] = wheelStyle(w)
	data["Segments"] = segments
	data["Empty"] = w.Empty()
	if w.Empty() {
		data["Status"] = "No prizes configured."
	}
	h.renderPage(c, data, "wheel.html")
}

func wheelStyle(w wheel.Wheel) template.CSS {
	return template.CSS("background: " + w.Gradient() + "; transition: none; transform: rotate(0deg)")
}

type adminRowView struct {
	models.PrizeRow
	Used int
}

// ShowAdmin renders the editable prize table.
func (h *HTTPHandler) ShowAdmin(c *gin.Context) {
	prizes, err := h.service.Prizes(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load prizes: %v", err)
		c.String(http.StatusInternalServerError, "Failed to load prizes")
		return
	}
	rows := make([]adminRowView, len(prizes))
	for i, p := range prizes {
		rows[i] = adminRowView{PrizeRow: models.RowFromPrize(p), Used: p.Used}
	}
	data := gin.H{
		"title":  "Prize admin",
		"Script": "admin.js",
		"Rows":   rows,
	}
	h.renderPage(c, data, "admin.html")
}

// ListPrizes returns the prize list as JSON.
func (h *HTTPHandler) ListPrizes(c *gin.Context) {
	prizes, err := h.service.Prizes(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load prizes"})
		return
	}
	if prizes == nil {
		prizes = []models.Prize{}
	}
	c.JSON(http.StatusOK, models.PrizeList{Prizes: prizes})
}

// Spin draws an outcome. The body has no outcome when nothing can be won.
func (h *HTTPHandler) Spin(c *gin.Context) {
	result, err := h.service.Spin(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "spin failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeletePrize removes one prize by name.
func (h *HTTPHandler) DeletePrize(c *gin.Context) {
	var req models.DeletePrizeRequest
	if !bindJSON(c, &req, deleteMessages, "invalid delete request") {
		return
	}

	err := h.service.Delete(c.Request.Context(), req.Name)
	switch {
	case errors.Is(err, services.ErrPrizeNotFound):
		c.JSON(http.StatusNotFound, models.APIResult{Success: false, Message: err.Error()})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.APIResult{Success: false, Message: "failed to delete prize"})
	default:
		c.JSON(http.StatusOK, models.APIResult{
			Success: true,
			Message: fmt.Sprintf(`Prize "%s" deleted.`, req.Name),
		})
	}
}

// SaveAdminChanges replaces the prize list with the submitted rows.
func (h *HTTPHandler) SaveAdminChanges(c *gin.Context) {
	var req models.SavePrizesRequest
	if !bindJSON(c, &req, saveMessages, "invalid prize list") {
		return
	}

	h.save(c, req.Prizes)
}

func (h *HTTPHandler) save(c *gin.Context, rows []models.PrizeRow) {
	err := h.service.Save(c.Request.Context(), rows)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.APIResult{Success: false, Message: verr.Error()})
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.APIResult{Success: false, Message: "failed to save prizes"})
	default:
		c.JSON(http.StatusOK, models.APIResult{Success: true, Message: "Changes saved successfully."})
	}
}

// ExportPrizesCSV handles the request to download the prize table as a CSV file.
func (h *HTTPHandler) ExportPrizesCSV(c *gin.Context) {
	prizes, err := h.service.Prizes(c.Request.Context())
	if err != nil {
		logger.Errorf("Failed to load prizes: %v", err)
		c.String(http.StatusInternalServerError, "Failed to load prizes")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=prizes.csv")

	// BOM so spreadsheet tools read the file as UTF-8
	c.Writer.Write([]byte("\xef\xbb\xbf"))

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"name", "probability", "usage_limit", "used"}); err != nil {
		logger.Infof("Error writing CSV header: %v", err)
		return
	}
	for _, p := range prizes {
		row := []string{
			p.Name,
			strconv.FormatFloat(p.Probability, 'f', -1, 64),
			strconv.Itoa(p.UsageLimit),
			strconv.Itoa(p.Used),
		}
		if err := w.Write(row); err != nil {
			logger.Infof("Error writing CSV row: %v", err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		logger.Infof("Error flushing CSV writer: %v", err)
	}
}

// UploadPrizesCSV replaces the prize table with the rows of an uploaded CSV
// file in the export layout. A leading header row and any columns past
// usage_limit are ignored.
func (h *HTTPHandler) UploadPrizesCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("prizeCSV")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.APIResult{Success: false, Message: fmt.Sprintf("Error retrieving file: %v", err)})
		return
	}
	defer file.Close()

	in := bufio.NewReader(file)
	if bom, _ := in.Peek(3); bytes.Equal(bom, []byte("\xef\xbb\xbf")) {
		in.Discard(3)
	}

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows []models.PrizeRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, models.APIResult{Success: false, Message: fmt.Sprintf("Error reading CSV: %v", err)})
			return
		}
		if line == 1 && len(record) > 0 && record[0] == "name" {
			continue
		}
		if len(record) < 3 {
			logger.Infof("Rejecting malformed CSV record: %v", record)
			c.JSON(http.StatusBadRequest, models.APIResult{
				Success: false,
				Message: fmt.Sprintf("line %d: expected name, probability and usage_limit", line),
			})
			return
		}
		rows = append(rows, models.PrizeRow{
			Name:        record[0],
			Probability: models.RawNumeric(record[1]),
			UsageLimit:  models.RawNumeric(record[2]),
		})
	}

	h.save(c, rows)
}

package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vertel/af-booking-service/internal/config"
	"github.com/vertel/af-booking-service/internal/core/domain"
	"github.com/vertel/af-booking-service/internal/core/ports/in"
	"github.com/vertel/af-booking-service/internal/core/ports/out"
	"github.com/vertel/af-booking-service/internal/utils"
)

type BookingController struct {
	useCase in.BookingUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewBookingController(useCase in.BookingUseCase, cfg *config.Config, logger out.LoggerPort) *BookingController {
	return &BookingController{
		useCase: useCase,
		cfg:     cfg,
		logger:  logger.WithModule("HttpController"),
	}
}

func (c *BookingController) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/v1")
	api.Use(c.basicAuth())
	{
		api.GET("/bookable-occasions", c.getBookableOccasions)
		api.POST("/bookable-occasions/reservation/:id", c.reserveBookableOccasion)
		api.DELETE("/bookable-occasions/reservation/:id", c.unreserveBookableOccasion)
		api.GET("/appointments", c.getAppointments)
		api.POST("/appointments", c.createAppointment)
		api.DELETE("/appointments/:id", c.deleteAppointment)
		api.PUT("/appointments/:id", c.updateAppointment)
	}
}

type OccasionResponse struct {
	ID                 string `json:"id"`
	AppointmentTitle   string `json:"appointment_title"`
	AppointmentChannel string `json:"appointment_channel"`
	OccasionStart      string `json:"occasion_start"`
	OccasionEnd        string `json:"occasion_end"`
	OccasionDuration   int    `json:"occasion_duration"`
}

func (c *BookingController) getBookableOccasions(ctx *gin.Context) {
	start := ctx.Query("start")
	stop := ctx.Query("stop")
	durationParam := ctx.Query("duration")
	typeParam := ctx.Query("type_id")
	channel := ctx.Query("channel")
	// TODO: для локальных встреч учитывать location
	_ = ctx.Query("location")

	if typeParam == "" || durationParam == "" || stop == "" || start == "" {
		ctx.String(http.StatusBadRequest, "Bad request")
		return
	}

	ipfNum, err := strconv.ParseInt(typeParam, 10, 64)
	if err != nil {
		ctx.String(http.StatusBadRequest, "Bad request: Invalid type_id")
		return
	}

	startTime, err := utils.ParseWireDateTime(start)
	if err != nil {
		ctx.String(http.StatusBadRequest, "Bad request: Invalid start")
		return
	}
	stopTime, err := utils.ParseWireDateTime(stop)
	if err != nil {
		ctx.String(http.StatusBadRequest, "Bad request: Invalid stop")
		return
	}

	durationMinutes, err := strconv.Atoi(durationParam)
	if err != nil {
		ctx.String(http.StatusBadRequest, "Bad request: Invalid duration")
		return
	}

	maxDepth := 1
	if depthParam := ctx.Query("max_depth"); depthParam != "" {
		maxDepth, err = strconv.Atoi(depthParam)
		if err != nil {
			ctx.String(http.StatusBadRequest, "Bad request: Invalid max_depth")
			return
		}
	}

	days, err := c.useCase.FindOccasions(
		ctx.Request.Context(),
		startTime,
		stopTime,
		time.Duration(durationMinutes)*time.Minute,
		ipfNum,
		channel,
		maxDepth,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMeetingTypeNotFound):
			ctx.String(http.StatusNotFound, "Meeting type not found")
		case errors.Is(err, domain.ErrInvalidDuration), errors.Is(err, domain.ErrInvalidRequest):
			ctx.String(http.StatusBadRequest, "Bad request")
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// Наружу уходит плоский список: день и глубина - внутренняя группировка,
	// порядок день -> глубина -> время начала сохраняется
	occasions := make([]OccasionResponse, 0)
	for _, day := range days {
		for _, depth := range day.Depths {
			for _, occ := range depth {
				occasions = append(occasions, OccasionResponse{
					ID:                 occ.EncodedID,
					AppointmentTitle:   occ.Title,
					AppointmentChannel: occ.Channel(),
					OccasionStart:      utils.FormatWireDateTime(occ.Start()),
					OccasionEnd:        utils.FormatWireDateTime(occ.Stop()),
					OccasionDuration:   len(occ.Slots) * c.cfg.Booking.SlotDurationMinutes,
				})
			}
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"bookable_occasions": occasions})
}

func (c *BookingController) reserveBookableOccasion(ctx *gin.Context) {
	_, err := c.useCase.ReserveOccasion(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidOccasion):
			ctx.String(http.StatusBadRequest, "Bad request: Invalid id")
		case errors.Is(err, domain.ErrOccasionNotFree):
			ctx.String(http.StatusNotFound, "ID not found")
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.String(http.StatusCreated, "OK, reservation created")
}

func (c *BookingController) unreserveBookableOccasion(ctx *gin.Context) {
	err := c.useCase.ReleaseOccasion(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidOccasion) || errors.Is(err, domain.ErrNotFound) {
			ctx.String(http.StatusNotFound, "ID not found")
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.String(http.StatusOK, "OK, reservation deleted")
}

func (c *BookingController) getAppointments(ctx *gin.Context) {
	filter := in.AppointmentSearchFilter{
		UserName:   ctx.Query("user_id"),
		CustomerNr: ctx.Query("customer_nr"),
		Pnr:        ctx.Query("pnr"),
	}

	if typesParam := ctx.Query("appointment_types"); typesParam != "" {
		for _, part := range strings.Split(typesParam, ",") {
			ipfNum, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				ctx.String(http.StatusNotFound, "Meeting type not found")
				return
			}
			filter.TypeIpfs = append(filter.TypeIpfs, ipfNum)
		}
	}

	if statusParam := ctx.Query("status_list"); statusParam != "" {
		filter.States = strings.Split(statusParam, ",")
	}

	if start := ctx.Query("start"); start != "" {
		startTime, err := utils.ParseWireDateTime(start)
		if err != nil {
			ctx.String(http.StatusBadRequest, "Bad request: Invalid start")
			return
		}
		filter.StartFrom = &startTime
	}

	if stop := ctx.Query("stop"); stop != "" {
		stopTime, err := utils.ParseWireDateTime(stop)
		if err != nil {
			ctx.String(http.StatusBadRequest, "Bad request: Invalid stop")
			return
		}
		filter.StopUntil = &stopTime
	}

	details, err := c.useCase.SearchAppointments(ctx.Request.Context(), filter)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			ctx.String(http.StatusBadRequest, "No arguments given.")
		case errors.Is(err, domain.ErrMeetingTypeNotFound):
			ctx.String(http.StatusNotFound, "Meeting type not found")
		case errors.Is(err, domain.ErrNotFound):
			if filter.Pnr != "" {
				ctx.String(http.StatusNotFound, "pnr. not found")
			} else {
				ctx.String(http.StatusNotFound, "customer nr. not found")
			}
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	appointments := make([]gin.H, 0, len(details))
	for _, detail := range details {
		appointments = append(appointments, c.appointmentJSON(detail))
	}

	ctx.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func (c *BookingController) createAppointment(ctx *gin.Context) {
	occasionID := ctx.Request.FormValue("bookable_occasion_id")
	customerNr := ctx.Request.FormValue("customer_nr")
	pnr := ctx.Request.FormValue("pnr")

	if customerNr == "" && pnr == "" {
		ctx.String(http.StatusBadRequest, "No customer nr. or pnr.")
		return
	}
	if occasionID == "" {
		ctx.String(http.StatusBadRequest, "No bookable_occasion_id.")
		return
	}

	detail, err := c.useCase.BookAppointment(ctx.Request.Context(), occasionID, customerNr, pnr)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if pnr != "" {
				ctx.String(http.StatusNotFound, "pnr. not found")
			} else {
				ctx.String(http.StatusNotFound, "customer nr. not found")
			}
		case errors.Is(err, domain.ErrInvalidOccasion):
			ctx.String(http.StatusNotFound, "Bookable occasion id not found")
		case errors.Is(err, domain.ErrOccasionNotFree):
			ctx.String(http.StatusForbidden, "Bookable occasion id not free")
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	body := c.appointmentJSON(*detail)
	body["office_code"] = c.cfg.Booking.DefaultOfficeCode

	ctx.JSON(http.StatusCreated, body)
}

func (c *BookingController) deleteAppointment(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.String(http.StatusBadRequest, "Bad request: Invalid id")
		return
	}

	if err := c.useCase.DeleteAppointment(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ctx.String(http.StatusNotFound, "ID not found")
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.String(http.StatusOK, "OK, deleted")
}

func (c *BookingController) updateAppointment(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.String(http.StatusBadRequest, "Bad request: Invalid id")
		return
	}

	// Перенос на другое время - отдельная нереализованная операция
	if ctx.Request.FormValue("appointment_id") != "" ||
		ctx.Request.FormValue("start") != "" ||
		ctx.Request.FormValue("stop") != "" ||
		ctx.Request.FormValue("duration") != "" {
		ctx.String(http.StatusNotImplemented, "Reschedule not implemented yet.")
		return
	}

	var upd domain.AppointmentUpdate
	if title := ctx.Request.FormValue("title"); title != "" {
		upd.Title = &title
	}
	if userName := ctx.Request.FormValue("user_id"); userName != "" {
		upd.UserName = &userName
	}
	if customerNr := ctx.Request.FormValue("customer_nr"); customerNr != "" {
		upd.CustomerNr = &customerNr
	}
	if typeParam := ctx.Request.FormValue("appointment_type"); typeParam != "" {
		ipfNum, err := strconv.ParseInt(typeParam, 10, 64)
		if err != nil {
			ctx.String(http.StatusBadRequest, "Bad request")
			return
		}
		upd.TypeIpfNum = &ipfNum
	}

	detail, err := c.useCase.UpdateAppointment(ctx.Request.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRequest):
			ctx.String(http.StatusBadRequest, "Bad request")
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrMeetingTypeNotFound):
			ctx.String(http.StatusBadRequest, "Bad request: Invalid id")
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	ctx.JSON(http.StatusOK, c.appointmentJSON(*detail))
}

// appointmentJSON собирает внешнее представление бронирования.
// start/stop идут в правильном порядке
func (c *BookingController) appointmentJSON(detail domain.AppointmentDetails) gin.H {
	appt := detail.Appointment

	body := gin.H{
		"appointment_start_datetime": utils.FormatWireDateTime(appt.Start),
		"appointment_end_datetime":   utils.FormatWireDateTime(appt.Stop),
		"appointment_length":         appt.DurationMinutes,
		"appointment_title":          appt.Name,
		"appointment_channel":        appt.Channel,
		"id":                         appt.ID,
		"status":                     string(appt.State),
		"appointment_type":           int64(0),
		"customer_id":                int64(0),
		"customer_name":              "",
		"employee_name":              "",
		"employee_phone":             "",
		"employee_signature":         appt.UserName,
		"office_address":             "",
		"office_email":               "",
		"location_code":              "",
		"office_name":                "",
	}

	if detail.MeetingType != nil {
		body["appointment_type"] = detail.MeetingType.IpfNum
	}
	if detail.Partner != nil {
		body["customer_id"] = detail.Partner.ID
		body["customer_name"] = detail.Partner.DisplayName
	}
	if detail.Employee != nil {
		body["employee_name"] = detail.Employee.DisplayName
		body["employee_phone"] = detail.Employee.Phone
	}

	return body
}

func (c *BookingController) basicAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range c.cfg.Auth.BasicClients {
			if subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1 &&
				subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1 {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}

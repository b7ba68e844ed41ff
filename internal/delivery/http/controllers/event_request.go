package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"eventcalendar/internal/adapters/storage"
	"eventcalendar/internal/delivery/http/helpers"
	"eventcalendar/internal/domain"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// EventRequest is the JSON body for creating or updating an event. On update
// only the fields present are changed. allDay and isPublic also accept the
// strings "true" and "false".
type EventRequest struct {
	Title       *string                 `json:"title" example:"Team sync"`
	Description *string                 `json:"description"`
	Start       *string                 `json:"start" example:"2024-06-01T09:00:00Z"`
	End         *string                 `json:"end" example:"2024-06-01T10:00:00Z"`
	Type        *string                 `json:"type" enums:"meeting,task,reminder,other"`
	Location    *string                 `json:"location"`
	City        *string                 `json:"city"`
	AllDay      json.RawMessage         `json:"allDay" swaggertype:"boolean"`
	Attendees   *[]string               `json:"attendees"`
	IsPublic    json.RawMessage         `json:"isPublic" swaggertype:"boolean"`
	Status      *string                 `json:"status" enums:"scheduled,in-progress,completed,cancelled"`
	Recurring   *domain.RecurrenceInput `json:"recurring"`
	ImageURL    *string                 `json:"imageUrl"`
}

func (req *EventRequest) toInput() domain.EventInput {
	in := domain.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Start:       req.Start,
		End:         req.End,
		Type:        req.Type,
		Location:    req.Location,
		City:        req.City,
		Attendees:   req.Attendees,
		Status:      req.Status,
		Recurring:   req.Recurring,
		ImageURL:    req.ImageURL,
	}
	in.AllDay = jsonFlag(req.AllDay, "allDay", &in.Rejected)
	in.IsPublic = jsonFlag(req.IsPublic, "isPublic", &in.Rejected)
	return in
}

var flagMessages = map[string]string{
	"allDay":   "All day must be a boolean value",
	"isPublic": "Public flag must be a boolean value",
}

func jsonFlag(raw json.RawMessage, field string, rejected *[]domain.FieldError) *bool {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return &b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return textFlag(s, field, rejected)
	}
	*rejected = append(*rejected, domain.FieldError{Field: field, Message: flagMessages[field]})
	return nil
}

func textFlag(s, field string, rejected *[]domain.FieldError) *bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		*rejected = append(*rejected, domain.FieldError{Field: field, Message: flagMessages[field]})
		return nil
	}
	return &b
}

// decodeEvent reads an event from a JSON or multipart body. It returns false
// after writing an error response.
func (c *EventController) decodeEvent(w http.ResponseWriter, r *http.Request) (domain.EventInput, *domain.ImageUpload, bool) {
	if !helpers.IsMultipart(r) {
		var req EventRequest
		if !helpers.DecodeJSON(w, r, &req) {
			return domain.EventInput{}, nil, false
		}
		return req.toInput(), nil, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, c.MaxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.WriteValidationError(w, []domain.FieldError{{Field: "image", Message: c.tooLargeMessage()}})
		} else {
			helpers.WriteJSONError(w, http.StatusBadRequest, "Malformed multipart body")
		}
		return domain.EventInput{}, nil, false
	}
	defer r.MultipartForm.RemoveAll()

	form := r.MultipartForm.Value
	in := domain.EventInput{
		Title:       formValue(form, "title"),
		Description: formValue(form, "description"),
		Start:       formValue(form, "start"),
		End:         formValue(form, "end"),
		Type:        formValue(form, "type"),
		Location:    formValue(form, "location"),
		City:        formValue(form, "city"),
		Status:      formValue(form, "status"),
		ImageURL:    formValue(form, "imageUrl"),
	}
	if v := formValue(form, "allDay"); v != nil {
		in.AllDay = textFlag(*v, "allDay", &in.Rejected)
	}
	if v := formValue(form, "isPublic"); v != nil {
		in.IsPublic = textFlag(*v, "isPublic", &in.Rejected)
	}
	in.Attendees = formAttendees(form, &in.Rejected)
	if v := formValue(form, "recurring"); v != nil && strings.TrimSpace(*v) != "" {
		var rec domain.RecurrenceInput
		if err := json.Unmarshal([]byte(*v), &rec); err != nil {
			in.Rejected = append(in.Rejected, domain.FieldError{Field: "recurring", Message: "Recurring must be a JSON object"})
		} else {
			in.Recurring = &rec
		}
	}

	image, err := c.readImage(r)
	if err != nil {
		if ve, ok := domain.AsValidationError(err); ok {
			in.Rejected = append(in.Rejected, ve.Errors...)
			return in, nil, true
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, "Malformed multipart body")
		return domain.EventInput{}, nil, false
	}
	return in, image, true
}

// readImage returns the "image" part, or nil when there is none.
func (c *EventController) readImage(r *http.Request) (*domain.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	contentType, ok := storage.ContentTypeFor(header.Filename)
	if !ok {
		return nil, domain.NewValidationError("image", "Only image files are allowed (jpg, jpeg, png, gif, webp)")
	}
	if header.Size > c.MaxUploadBytes {
		return nil, domain.NewValidationError("image", c.tooLargeMessage())
	}
	body, err := io.ReadAll(io.LimitReader(file, c.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(body)) > c.MaxUploadBytes {
		return nil, domain.NewValidationError("image", c.tooLargeMessage())
	}
	return &domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}, nil
}

func (c *EventController) tooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %dMB.", c.MaxUploadBytes>>20)
}

func formValue(form map[string][]string, key string) *string {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

// formAttendees accepts repeated attendees fields, a JSON array, or a comma
// separated list.
func formAttendees(form map[string][]string, rejected *[]domain.FieldError) *[]string {
	vs, ok := form["attendees"]
	if !ok {
		vs, ok = form["attendees[]"]
	}
	if !ok {
		return nil
	}
	if len(vs) == 1 {
		v := strings.TrimSpace(vs[0])
		switch {
		case v == "":
			return &[]string{}
		case strings.HasPrefix(v, "["):
			var ids []string
			if err := json.Unmarshal([]byte(v), &ids); err != nil {
				*rejected = append(*rejected, domain.FieldError{Field: "attendees", Message: "Attendees must be valid user ids"})
				return nil
			}
			return &ids
		default:
			ids := strings.Split(v, ",")
			return &ids
		}
	}
	ids := append([]string(nil), vs...)
	return &ids
}

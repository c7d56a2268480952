// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/nexus/campusmap/internal/model"
)

// encodeEventForm assembles the multipart payload the backend expects
// for event submissions: plain fields plus an optional image part.
func encodeEventForm(draft EventDraft) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"lat":         strconv.FormatFloat(draft.Lat, 'f', -1, 64),
		"lon":         strconv.FormatFloat(draft.Lon, 'f', -1, 64),
	}
	if draft.StartsAt != nil {
		fields["startsAt"] = draft.StartsAt.Format(model.FormLayout)
	}
	if draft.EndsAt != nil {
		fields["endsAt"] = draft.EndsAt.Format(model.FormLayout)
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", name, err)
		}
	}

	if draft.Image != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="image"; filename=%q`, draft.Image.Filename))
		contentType := draft.Image.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("creating image part: %w", err)
		}
		if _, err := part.Write(draft.Image.Data); err != nil {
			return nil, "", fmt.Errorf("writing image part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

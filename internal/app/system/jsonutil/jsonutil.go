// Package jsonutil provides helper functions for JSON API responses.
//
// Every response uses the same envelope: successes are
// {"success": true, "data": ...} and failures are
// {"success": false, "status": N, "message": "..."}.
package jsonutil

import (
	"encoding/json"
	"net/http"
)

// envelope is the success response wrapper.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// failure is the error response wrapper.
type failure struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// JSON writes raw JSON with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// OK writes a 200 success envelope around data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 success envelope around data.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Fail writes an error envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, failure{Success: false, Status: status, Message: message})
}

// Decode reads and decodes JSON from the request body into v.
//
// Usage:
//
//	var input screenshotInput
//	if err := jsonutil.Decode(r, &input); err != nil {
//	    jsonutil.Fail(w, http.StatusBadRequest, "Invalid JSON payload")
//	    return
//	}
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

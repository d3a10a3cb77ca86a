package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"jpt/internal/api/middleware"
	"jpt/internal/usecase"
)

// maxPublishBody caps the size of a /produce-message request body.
const maxPublishBody = 1 << 20

type Handlers struct {
	getHealthUC      *usecase.GetHealth
	generateDataUC   *usecase.GenerateData
	callPeerUC       *usecase.CallPeer
	produceMessageUC *usecase.ProduceMessage
	strictStatus     bool
}

// NewHandlers accepts a nil produceMessageUC for services that only consume.
func NewHandlers(
	getHealthUC *usecase.GetHealth,
	generateDataUC *usecase.GenerateData,
	callPeerUC *usecase.CallPeer,
	produceMessageUC *usecase.ProduceMessage,
	strictStatus bool,
) *Handlers {
	return &Handlers{
		getHealthUC:      getHealthUC,
		generateDataUC:   generateDataUC,
		callPeerUC:       callPeerUC,
		produceMessageUC: produceMessageUC,
		strictStatus:     strictStatus,
	}
}

func (h *Handlers) CanPublish() bool {
	return h.produceMessageUC != nil
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.getHealthUC.Execute())
}

func (h *Handlers) Data(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.generateDataUC.Execute())
}

// Call reports peer failures in the body. The status stays 200 unless
// strict status is enabled.
func (h *Handlers) Call(w http.ResponseWriter, r *http.Request) {
	result, failure := h.callPeerUC.Execute(r.Context())
	if failure != nil {
		writeJSON(w, h.failureStatus(http.StatusBadGateway), failure)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ProduceMessage(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(http.MaxBytesReader(w, r.Body, maxPublishBody))
	if err != nil {
		w.Header().Set(middleware.FailedHeader, "true")
		writeJSON(w, http.StatusBadRequest, usecase.PublishResult{
			Status: usecase.StatusError,
			Error:  "invalid request body: " + err.Error(),
		})
		return
	}

	res, err := h.produceMessageUC.Execute(r.Context(), body)
	if err != nil {
		w.Header().Set(middleware.FailedHeader, "true")
		writeJSON(w, h.failureStatus(http.StatusInternalServerError), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) failureStatus(strict int) int {
	if h.strictStatus {
		return strict
	}
	return http.StatusOK
}

// decodeBody reads exactly one JSON value, keeping numbers verbatim.
func decodeBody(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty body")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

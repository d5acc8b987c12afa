package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/autobot/fleetctl/pkg/security"
	"github.com/autobot/fleetctl/pkg/types"
)

func (s *Server) mountCredentials(r chi.Router) {
	r.Post("/{type}", s.createCredential)
	r.Get("/{id}/connection", s.getConnection)
	r.Post("/exchange", s.exchangeToken)
	r.Get("/tls/expiring", s.listExpiringTLS)
}

type createCredentialRequest struct {
	NodeID string                   `json:"node_id"`
	Name   string                   `json:"name"`
	Fields security.PlaintextFields `json:"fields"`
	VNC    security.VNCDefaults     `json:"vnc,omitempty"`
}

func (s *Server) createCredential(w http.ResponseWriter, r *http.Request) {
	credType := types.CredentialType(chi.URLParam(r, "type"))
	switch credType {
	case types.CredentialSSH, types.CredentialTLS, types.CredentialVNC:
	default:
		RespondError(w, http.StatusBadRequest, "validation_failed", "unknown credential type: "+string(credType))
		return
	}

	var req createCredentialRequest
	if err := Decode(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	cred, err := s.vault.Create(req.NodeID, credType, req.Name, req.Fields, req.VNC)
	if err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusCreated, cred)
}

func (s *Server) getConnection(w http.ResponseWriter, r *http.Request) {
	credentialID := chi.URLParam(r, "id")
	issueToken := r.URL.Query().Get("token") == "true"

	info, err := s.vault.GetConnectionInfo(credentialID, issueToken)
	if err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusOK, info)
}

type exchangeRequest struct {
	Token string `json:"token"`
}

func (s *Server) exchangeToken(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := Decode(r, &req); err != nil {
		RespondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	fields, err := s.vault.ExchangeToken(req.Token)
	if err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusOK, fields)
}

func (s *Server) listExpiringTLS(w http.ResponseWriter, r *http.Request) {
	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			days = parsed
		}
	}

	creds, err := s.vault.ListExpiringTLS(days)
	if err != nil {
		RespondErr(w, err)
		return
	}
	Respond(w, http.StatusOK, creds)
}
</content>

package rpc

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/WillShirley13/testudo-bonds/core/types"
	"github.com/WillShirley13/testudo-bonds/crypto"
)

// SubmitTransaction applies a signed transaction and commits the resulting
// state root.
func (s *Server) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, -1, "invalid request body: "+err.Error())
		return
	}
	tx, err := req.Transaction()
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, err.Error())
		return
	}
	signed, err := tx.VerifySignatures()
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, err.Error())
		return
	}
	if err := s.consumeQuota(signed); err != nil {
		s.metrics.RecordThrottle("quota_exceeded")
		writeError(w, http.StatusTooManyRequests, -1, err.Error())
		return
	}

	receipt, err := s.backend.Execute(r.Context(), tx)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	root, err := s.backend.Commit()
	if err != nil {
		s.logger.Error("state commit failed", "request_id", receipt.RequestID, "error", err)
		writeError(w, http.StatusInternalServerError, -1, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SubmitResult{
		OK:        true,
		Root:      root.Hex(),
		RequestID: receipt.RequestID,
		Kind:      receipt.Kind,
		Events:    receipt.Events,
	})
}

// consumeQuota charges one submission to every verified signer.
func (s *Server) consumeQuota(signed map[crypto.Address]bool) error {
	signers := make([]crypto.Address, 0, len(signed))
	for signer := range signed {
		signers = append(signers, signer)
	}
	return s.quota.Charge(s.now().Unix(), signers...)
}

// GetHead returns the newest commit transactions may anchor to.
func (s *Server) GetHead(w http.ResponseWriter, r *http.Request) {
	head, hash := s.backend.Head()
	writeJSON(w, http.StatusOK, HeadView{
		Height:    head.Height,
		Timestamp: head.Timestamp,
		StateRoot: head.StateRoot,
		Hash:      hash,
	})
}

func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, addr, err := s.backend.Config()
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ConfigView{Address: addr, Config: cfg})
}

func (s *Server) GetOwner(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r, "wallet")
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, err.Error())
		return
	}
	owner, addr, err := s.backend.Owner(wallet)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerView{Address: addr, Owner: owner})
}

func (s *Server) GetPosition(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r, "wallet")
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, err.Error())
		return
	}
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, "invalid bond index")
		return
	}
	pos, addr, err := s.backend.Position(wallet, index)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PositionView{Address: addr, Position: pos})
}

// GetPreview reports what a claim on the position would settle now.
func (s *Server) GetPreview(w http.ResponseWriter, r *http.Request) {
	wallet, err := walletParam(r, "wallet")
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, err.Error())
		return
	}
	index, err := indexParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, "invalid bond index")
		return
	}
	preview, err := s.backend.PreviewClaim(wallet, index)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := walletParam(r, "address")
	if err != nil {
		writeError(w, http.StatusBadRequest, -1, err.Error())
		return
	}
	acct, err := s.backend.TokenAccount(addr)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if acct == nil {
		writeError(w, http.StatusNotFound, -1, "value account not found")
		return
	}
	writeJSON(w, http.StatusOK, BalanceView{Address: addr, Mint: acct.Mint, Owner: acct.Owner, Amount: acct.Amount})
}

// GetEvents returns the most recent committed events, newest last. The
// optional limit query parameter trims the list.
func (s *Server) GetEvents(w http.ResponseWriter, r *http.Request) {
	var list []*types.Event
	if s.events != nil {
		list = s.events.Events()
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, -1, "invalid limit")
			return
		}
		if limit < len(list) {
			list = list[len(list)-limit:]
		}
	}
	if list == nil {
		list = []*types.Event{}
	}
	writeJSON(w, http.StatusOK, list)
}

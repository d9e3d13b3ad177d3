/*
Package handler provides HTTP handler functions for the Proof-of-Work connect gate.
*/
package handler

import (
	"net/http"

	"relaychat/internal/pkg/errs"
	"relaychat/internal/pkg/logx"
	"relaychat/internal/pkg/req"
	"relaychat/internal/pkg/resp"
)

// PowVerifyInput is the body of a proof submission.
type PowVerifyInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandlePowChallenge issues a nonce and the difficulty the client must meet.
// When the gate is disabled the difficulty is 0 and no nonce is issued.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.PowGate.Enabled() {
			resp.RespondSuccess(w, r, map[string]any{"difficulty": 0})
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"nonce":      deps.PowGate.GenerateNonce(),
			"difficulty": deps.PowGate.Difficulty(),
		})
	}
}

// HandlePowVerify exchanges a valid proof for a single-use connect ticket.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.PowGate.Enabled() {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input PowVerifyInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Nonce == "" || input.Counter == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		ticket, err := deps.PowGate.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			logx.Warn("PoW proof rejected.", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token": ticket,
		})
	}
}

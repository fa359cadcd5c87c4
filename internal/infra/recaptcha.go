package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Vovarama1992/edushare/internal/domain"
	"github.com/Vovarama1992/edushare/internal/ports"
)

type RecaptchaVerifier struct {
	secret    string
	minScore  float64
	verifyURL string
	client    *http.Client
}

func NewRecaptchaVerifier(secret string, minScore float64, verifyURL string) ports.CaptchaVerifier {
	return &RecaptchaVerifier{
		secret:    secret,
		minScore:  minScore,
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type recaptchaResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"` // v3 only
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *RecaptchaVerifier) Enabled() bool { return v.secret != "" }

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if token == "" {
		return fmt.Errorf("%w: missing token", domain.ErrCaptcha)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" && remoteIP != "unknown" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("recaptcha request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("recaptcha http %d", resp.StatusCode)
	}

	var parsed recaptchaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("recaptcha decode: %w", err)
	}

	if !parsed.Success {
		return fmt.Errorf("%w: %s", domain.ErrCaptcha, strings.Join(parsed.ErrorCodes, ","))
	}
	if parsed.Score != nil && *parsed.Score < v.minScore {
		return fmt.Errorf("%w: score %.2f", domain.ErrCaptcha, *parsed.Score)
	}
	return nil
}

// Package cas fetches authenticated WS-EDT pages. The vendor page sits
// behind a CAS single-sign-on redirect; when the initial GET lands on
// the CAS login form, the client replays the form with credentials and
// reloads the target so the service session is initialized.
package cas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	appLog "wigorcal/internal/log"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

var (
	// ErrMissingCredentials is returned when the target redirects to CAS
	// but no username/password was supplied.
	ErrMissingCredentials = errors.New("cas: login required but no credentials provided")
	// ErrBadCredentials is returned when CAS rejects the login POST.
	ErrBadCredentials = errors.New("cas: authentication rejected")
)

var reDateParam = regexp.MustCompile(`(date=)\d{2}/\d{2}/\d{4}`)

// Credentials for the CAS login form.
type Credentials struct {
	Username string
	Password string
}

// Client is a cookie-jarred HTTP client that transparently performs the
// CAS login flow. One client holds one session; it is safe to fetch
// several weeks through the same client.
type Client struct {
	http      *http.Client
	creds     Credentials
	debugPage string
}

// NewClient builds a Client. debugPage, when non-empty, receives a copy
// of the last fetched page for troubleshooting; dump failures are
// logged, never fatal.
func NewClient(creds Credentials, debugPage string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		creds:     creds,
		debugPage: debugPage,
	}, nil
}

// SetURLDate rewrites the date=MM/DD/YYYY query parameter of the WS-EDT
// URL, appending it when absent.
func SetURLDate(rawURL string, d time.Time) string {
	mmdd := d.Format("01/02/2006")
	if strings.Contains(rawURL, "date=") {
		return reDateParam.ReplaceAllString(rawURL, "${1}"+mmdd)
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + "date=" + mmdd
}

// IsLoginPage reports whether the HTML is the CAS login form rather than
// the timetable. The check is the form id plus the CAS execution token,
// which together do not appear on vendor pages.
func IsLoginPage(html string) bool {
	return (strings.Contains(html, `id="fm1"`) || strings.Contains(html, `id='fm1'`)) &&
		strings.Contains(html, `name="execution"`)
}

// FetchWeek retrieves the authenticated timetable page for the week of
// the given Monday.
func (c *Client) FetchWeek(ctx context.Context, baseURL string, monday time.Time) (string, error) {
	target := SetURLDate(baseURL, monday)
	appLog.Info("fetching timetable page", "monday", monday.Format("2006-01-02"))

	page, finalURL, err := c.get(ctx, target)
	if err != nil {
		return "", err
	}

	if IsLoginPage(page) {
		if c.creds.Username == "" || c.creds.Password == "" {
			c.dumpDebug(page)
			return "", ErrMissingCredentials
		}
		appLog.Info("cas login page detected, authenticating")
		if err := c.login(ctx, page, finalURL); err != nil {
			c.dumpDebug(page)
			return "", err
		}
		// Reload the target so the service-side session attaches to it.
		page, _, err = c.get(ctx, target)
		if err != nil {
			return "", err
		}
		if IsLoginPage(page) {
			c.dumpDebug(page)
			return "", ErrBadCredentials
		}
	}

	c.dumpDebug(page)
	return page, nil
}

func (c *Client) get(ctx context.Context, rawURL string) (body string, finalURL *url.URL, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, err
	}
	return string(data), resp.Request.URL, nil
}

// login replays the CAS form with credentials. The hidden inputs
// (execution token, lt, ...) must be echoed back exactly as served.
func (c *Client) login(ctx context.Context, page string, pageURL *url.URL) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return fmt.Errorf("cas: parsing login page: %w", err)
	}
	form := doc.Find("form#fm1").First()
	if form.Length() == 0 {
		return errors.New("cas: login form not found")
	}

	action, _ := form.Attr("action")
	actionURL, err := pageURL.Parse(action)
	if err != nil {
		return fmt.Errorf("cas: resolving form action: %w", err)
	}

	payload := collectFormInputs(form)
	payload.Set("username", c.creds.Username)
	payload.Set("password", c.creds.Password)
	setDefault(payload, "_eventId", "submit")
	setDefault(payload, "geolocation", "")
	setDefault(payload, "deviceFingerprint", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, actionURL.String(),
		strings.NewReader(payload.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cas: login post: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if IsLoginPage(string(data)) {
		return ErrBadCredentials
	}
	return nil
}

// collectFormInputs harvests the form's input values. Unchecked
// checkboxes and radios are skipped, matching what a browser submits.
func collectFormInputs(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input").Each(func(_ int, inp *goquery.Selection) {
		name, ok := inp.Attr("name")
		if !ok || name == "" {
			return
		}
		typ, _ := inp.Attr("type")
		switch strings.ToLower(typ) {
		case "checkbox", "radio":
			if _, checked := inp.Attr("checked"); !checked {
				return
			}
		}
		value, _ := inp.Attr("value")
		values.Set(name, value)
	})
	return values
}

func setDefault(v url.Values, key, val string) {
	if !v.Has(key) {
		v.Set(key, val)
	}
}

func (c *Client) dumpDebug(page string) {
	if c.debugPage == "" {
		return
	}
	if err := os.WriteFile(c.debugPage, []byte(page), 0o600); err != nil {
		appLog.Warn("failed to write debug page", "path", c.debugPage, "err", err)
	}
}

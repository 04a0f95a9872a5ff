// Package sheetsapi is a minimal Google Sheets v4 client covering the
// calls the sync pipeline makes: spreadsheet metadata, tab reads, tab
// creation, row appends and single cell writes. Authentication uses a
// service account key with the two-legged JWT flow.
package sheetsapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/imroc/req/v3"

	"sheetsync/internal/transfer"
)

// Config carries the client settings. BaseURL exists so tests can point
// the client at a local server.
type Config struct {
	CredentialsFile string
	BaseURL         string
}

// Client talks to the Sheets API. It implements transfer.SpreadsheetAPI.
type Client struct {
	http *req.Client
	auth *tokenSource
}

var _ transfer.SpreadsheetAPI = (*Client)(nil)

// New loads the service account key and builds the HTTP client. Bearer
// tokens are attached per request so a refresh mid-run is transparent.
func New(cfg *Config) (*Client, error) {
	creds, err := LoadCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	auth, err := newTokenSource(creds)
	if err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent(UserAgent).
		SetCommonErrorResult(&APIError{}).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal).
		OnBeforeRequest(func(_ *req.Client, r *req.Request) error {
			token, err := auth.Token(r.Context())
			if err != nil {
				return err
			}
			r.SetBearerAuthToken(token)
			return nil
		})

	return &Client{http: client, auth: auth}, nil
}

// Probe fetches the spreadsheet title, verifying both reachability and
// that the service account was granted access.
func (c *Client) Probe(ctx context.Context, spreadsheetID string) (string, error) {
	meta, err := c.getSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return "", err
	}
	return meta.Properties.Title, nil
}

// ListTabs returns the tab titles in sheet order.
func (c *Client) ListTabs(ctx context.Context, spreadsheetID string) ([]string, error) {
	meta, err := c.getSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(meta.Sheets))
	for _, sheet := range meta.Sheets {
		titles = append(titles, sheet.Properties.Title)
	}
	return titles, nil
}

// ReadTab fetches every populated cell of a tab as string rows.
func (c *Client) ReadTab(ctx context.Context, spreadsheetID string, tab string) ([]transfer.Row, error) {
	var vr *valueRange
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&vr).
		Get(fmt.Sprintf(valuesPath, spreadsheetID, url.PathEscape(Range(tab, ""))))
	if err := handleAPIError(res, err, "read tab"); err != nil {
		return nil, err
	}
	if vr == nil {
		return nil, nil
	}
	return toRows(vr.Values), nil
}

// EnsureTab returns a handle for the named tab, creating it when the
// spreadsheet does not have it yet.
func (c *Client) EnsureTab(ctx context.Context, spreadsheetID string, tab string) (*transfer.TabHandle, error) {
	meta, err := c.getSpreadsheet(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties.Title == tab {
			return &transfer.TabHandle{
				SpreadsheetID: spreadsheetID,
				SheetID:       sheet.Properties.SheetID,
				Title:         tab,
			}, nil
		}
	}

	var reply *batchUpdateResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(&batchUpdateRequest{
			Requests: []updateRequest{
				{AddSheet: &addSheet{Properties: sheetProperties{Title: tab}}},
			},
		}).
		SetSuccessResult(&reply).
		Post(fmt.Sprintf(batchUpdatePath, spreadsheetID))
	if err := handleAPIError(res, err, "add tab"); err != nil {
		return nil, err
	}
	if reply == nil || len(reply.Replies) == 0 || reply.Replies[0].AddSheet == nil {
		return nil, ErrMalformedReply
	}

	created := reply.Replies[0].AddSheet.Properties
	slog.Info("created tab", "tab", created.Title, "sheetId", created.SheetID)

	return &transfer.TabHandle{
		SpreadsheetID: spreadsheetID,
		SheetID:       created.SheetID,
		Title:         created.Title,
	}, nil
}

// AppendRows appends rows after the last populated row of the tab.
// Values go in RAW so dates and URLs land exactly as stored.
func (c *Client) AppendRows(ctx context.Context, tab *transfer.TabHandle, rows []transfer.Row) error {
	if len(rows) == 0 {
		return nil
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"valueInputOption": "RAW",
			"insertDataOption": "INSERT_ROWS",
		}).
		SetBody(rowsPayload(rows)).
		Post(fmt.Sprintf(appendPath, tab.SpreadsheetID, url.PathEscape(Range(tab.Title, ""))))
	return handleAPIError(res, err, "append rows")
}

// WriteCell overwrites a single cell of the tab.
func (c *Client) WriteCell(ctx context.Context, tab *transfer.TabHandle, cellRef string, value string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("valueInputOption", "RAW").
		SetBody(&valuesBody{Values: [][]string{{value}}}).
		Put(fmt.Sprintf(valuesPath, tab.SpreadsheetID, url.PathEscape(Range(tab.Title, cellRef))))
	return handleAPIError(res, err, "write cell")
}

func (c *Client) getSpreadsheet(ctx context.Context, spreadsheetID string) (*spreadsheetMeta, error) {
	var meta *spreadsheetMeta
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("fields", spreadsheetFields).
		SetSuccessResult(&meta).
		Get(fmt.Sprintf(spreadsheetPath, spreadsheetID))
	if err := handleAPIError(res, err, "get spreadsheet"); err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("get spreadsheet: empty response")
	}
	return meta, nil
}

package sheetsapi

import (
	"fmt"
	"runtime"

	"sheetsync/internal/version"
)

const (
	// DefaultBaseURL is the production Sheets API endpoint. Tests point
	// the client at an httptest server instead.
	DefaultBaseURL = "https://sheets.googleapis.com"

	defaultTokenURL = "https://oauth2.googleapis.com/token"

	scopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"
	jwtBearerGrant    = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	spreadsheetPath = "/v4/spreadsheets/%s"
	valuesPath      = "/v4/spreadsheets/%s/values/%s"
	appendPath      = "/v4/spreadsheets/%s/values/%s:append"
	batchUpdatePath = "/v4/spreadsheets/%s:batchUpdate"

	// spreadsheetFields trims spreadsheet metadata responses to the
	// title and per-tab properties.
	spreadsheetFields = "properties.title,sheets.properties(sheetId,title)"
)

// UserAgent identifies this client to the Sheets API.
var UserAgent = fmt.Sprintf("SheetSync/%s (%s; %s; %s)",
	version.Version,
	version.Revision,
	runtime.GOOS,
	runtime.GOARCH,
)

type sheetProperties struct {
	SheetID int64  `json:"sheetId,omitempty"`
	Title   string `json:"title,omitempty"`
}

type spreadsheetMeta struct {
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
	Sheets []struct {
		Properties sheetProperties `json:"properties"`
	} `json:"sheets"`
}

// valueRange mirrors the API's ValueRange. Cells arrive loosely typed,
// so reads use `any` and conversion happens in toRows.
type valueRange struct {
	Range          string  `json:"range,omitempty"`
	MajorDimension string  `json:"majorDimension,omitempty"`
	Values         [][]any `json:"values,omitempty"`
}

// valuesBody is the write-side ValueRange. Rows are strings end to end,
// combined with valueInputOption=RAW on every write.
type valuesBody struct {
	Values [][]string `json:"values"`
}

type addSheet struct {
	Properties sheetProperties `json:"properties"`
}

type batchUpdateRequest struct {
	Requests []updateRequest `json:"requests"`
}

type updateRequest struct {
	AddSheet *addSheet `json:"addSheet,omitempty"`
}

type batchUpdateResponse struct {
	Replies []struct {
		AddSheet *addSheet `json:"addSheet"`
	} `json:"replies"`
}

type oauthToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

package services_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
)

// --- Test Suite Setup ---

type ExportServiceTestSuite struct {
	suite.Suite
	service portssvc.ExportSvc
}

func (suite *ExportServiceTestSuite) SetupTest() {
	suite.service = services.NewExportService()
}

func sampleReport() *domain.ReportData {
	return &domain.ReportData{
		Title:       "Trial Balance",
		GeneratedAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		Columns: []domain.ReportColumn{
			{Key: "accountCode", Label: "Account Code", Kind: domain.CellText},
			{Key: "accountName", Label: "Account Name", Kind: domain.CellText},
			{Key: "debit", Label: "Debit", Kind: domain.CellDecimal},
			{Key: "credit", Label: "Credit", Kind: domain.CellDecimal},
			{Key: "entryCount", Label: "Entries", Kind: domain.CellInteger},
		},
		Rows: [][]domain.ReportCell{
			{
				domain.TextCell("1110"),
				domain.TextCell("Operating Cash"),
				domain.DecimalCell(decimal.RequireFromString("1234.50")),
				domain.DecimalCell(decimal.Zero),
				domain.IntegerCell(3),
			},
			{
				domain.TextCell("4100"),
				domain.TextCell("Interest Income"),
				domain.DecimalCell(decimal.Zero),
				domain.DecimalCell(decimal.RequireFromString("27.3973")),
				domain.IntegerCell(1),
			},
		},
	}
}

// --- Test Cases ---

func (suite *ExportServiceTestSuite) TestRender_CSV() {
	data, contentType, err := suite.service.Render(sampleReport(), "csv")

	suite.Require().NoError(err)
	suite.Equal("text/csv; charset=utf-8", contentType)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	suite.Require().NoError(err)
	suite.Require().Len(records, 3)
	suite.Equal([]string{"Account Code", "Account Name", "Debit", "Credit", "Entries"}, records[0])
	suite.Equal("1234.50", records[1][2])
	suite.Equal("27.3973", records[2][3])

	parsed, err := decimal.NewFromString(records[1][2])
	suite.Require().NoError(err)
	suite.True(parsed.Equal(decimal.RequireFromString("1234.50")))
}

func (suite *ExportServiceTestSuite) TestRender_JSON() {
	data, contentType, err := suite.service.Render(sampleReport(), "json")

	suite.Require().NoError(err)
	suite.Equal("application/json; charset=utf-8", contentType)

	// Monetary values must be strings on the wire, never JSON numbers.
	suite.Contains(string(data), `"1234.50"`)

	var parsed struct {
		Title string           `json:"title"`
		Rows  []map[string]any `json:"rows"`
	}
	suite.Require().NoError(json.Unmarshal(data, &parsed))
	suite.Equal("Trial Balance", parsed.Title)
	suite.Require().Len(parsed.Rows, 2)

	debit, ok := parsed.Rows[0]["debit"].(string)
	suite.Require().True(ok, "debit cell should decode as a string")
	suite.Equal("1234.50", debit)
	suite.True(decimal.RequireFromString(debit).Equal(decimal.RequireFromString("1234.50")))

	count, ok := parsed.Rows[0]["entryCount"].(float64)
	suite.Require().True(ok, "integer cell should decode as a number")
	suite.Equal(float64(3), count)
}

func (suite *ExportServiceTestSuite) TestRender_JSONPreservesColumnOrder() {
	data, _, err := suite.service.Render(sampleReport(), "json")

	suite.Require().NoError(err)
	body := string(data)
	suite.Less(strings.Index(body, `"accountCode"`), strings.Index(body, `"accountName"`))
	suite.Less(strings.Index(body, `"accountName"`), strings.Index(body, `"debit"`))
}

func (suite *ExportServiceTestSuite) TestRender_XML() {
	data, contentType, err := suite.service.Render(sampleReport(), "xml")

	suite.Require().NoError(err)
	suite.Equal("application/xml; charset=utf-8", contentType)
	suite.True(strings.HasPrefix(string(data), xml.Header))

	var parsed struct {
		Title string `xml:"title,attr"`
		Rows  []struct {
			Cells []struct {
				Key   string `xml:"key,attr"`
				Value string `xml:",chardata"`
			} `xml:"cell"`
		} `xml:"row"`
	}
	suite.Require().NoError(xml.Unmarshal(data, &parsed))
	suite.Equal("Trial Balance", parsed.Title)
	suite.Require().Len(parsed.Rows, 2)

	var debit string
	for _, cell := range parsed.Rows[0].Cells {
		if cell.Key == "debit" {
			debit = cell.Value
		}
	}
	suite.Equal("1234.50", debit)
}

func (suite *ExportServiceTestSuite) TestRender_EmptyFormatDefaultsToJSON() {
	_, contentType, err := suite.service.Render(sampleReport(), "")

	suite.Require().NoError(err)
	suite.Equal("application/json; charset=utf-8", contentType)
}

func (suite *ExportServiceTestSuite) TestRender_FormatIsCaseInsensitive() {
	_, contentType, err := suite.service.Render(sampleReport(), " CSV ")

	suite.Require().NoError(err)
	suite.Equal("text/csv; charset=utf-8", contentType)
}

func (suite *ExportServiceTestSuite) TestRender_UnsupportedFormat() {
	data, contentType, err := suite.service.Render(sampleReport(), "xlsx")

	suite.Require().Error(err)
	suite.Nil(data)
	suite.Empty(contentType)
	suite.ErrorIs(err, services.ErrUnsupportedFormat)
}

func (suite *ExportServiceTestSuite) TestRender_EmptyReport() {
	report := &domain.ReportData{
		Title:       "Period Summary",
		GeneratedAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
		Columns: []domain.ReportColumn{
			{Key: "periodName", Label: "Period", Kind: domain.CellText},
		},
	}

	data, _, err := suite.service.Render(report, "csv")
	suite.Require().NoError(err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	suite.Require().NoError(err)
	suite.Len(records, 1)

	data, _, err = suite.service.Render(report, "json")
	suite.Require().NoError(err)
	var parsed struct {
		Rows []map[string]any `json:"rows"`
	}
	suite.Require().NoError(json.Unmarshal(data, &parsed))
	suite.Empty(parsed.Rows)
}

func TestExportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceTestSuite))
}

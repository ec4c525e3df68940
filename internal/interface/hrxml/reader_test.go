package hrxml

import (
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/pkg/logger"
)

const v3Document = `<?xml version="1.0" encoding="ISO-8859-1"?>
<hr:HRXMLRequest xmlns:hr="http://www.hr-xml.org/3">
  <hr:Header>
    <hr:TransactId>source-1</hr:TransactId>
    <hr:TimeStamp>2024-01-02T08:30:00Z</hr:TimeStamp>
  </hr:Header>
  <hr:Body>
    <hr:Assignment>
      <hr:AssignmentId>A-100</hr:AssignmentId>
      <hr:StaffingSupplierId>SUP-1</hr:StaffingSupplierId>
      <hr:AssignmentDateRange>
        <hr:StartDate>2024-01-01</hr:StartDate>
        <hr:ExpectedEndDate>2024-01-10</hr:ExpectedEndDate>
        <hr:FlexibilityMinDate>2023-12-01</hr:FlexibilityMinDate>
        <hr:FlexibilityMaxDate>2024-02-01</hr:FlexibilityMaxDate>
      </hr:AssignmentDateRange>
    </hr:Assignment>
  </hr:Body>
</hr:HRXMLRequest>
`

const v2Document = `<?xml version="1.0" encoding="ISO-8859-1"?>
<Envelope xmlns="http://ns.hr-xml.org/2007-04-15">
  <Assignment>
    <AssignmentId><IdValue>A-100</IdValue></AssignmentId>
    <StaffingSupplierId><IdValue>SUP-1</IdValue></StaffingSupplierId>
    <AssignmentDateRange>
      <StartDate>2024-01-01</StartDate>
      <ExpectedEndDate>2024-01-10</ExpectedEndDate>
    </AssignmentDateRange>
  </Assignment>
</Envelope>
`

const batchDocument = `<?xml version="1.0" encoding="ISO-8859-1"?>
<hr:HRXMLRequest xmlns:hr="http://www.hr-xml.org/3">
  <hr:Body>
    <hr:Assignment>
      <hr:AssignmentId>FIRST</hr:AssignmentId>
      <hr:AssignmentDateRange>
        <hr:StartDate>2024-03-01</hr:StartDate>
        <hr:ExpectedEndDate>2024-03-31</hr:ExpectedEndDate>
      </hr:AssignmentDateRange>
    </hr:Assignment>
    <hr:Assignment>
      <hr:AssignmentId>BROKEN</hr:AssignmentId>
      <hr:AssignmentDateRange>
        <hr:StartDate>not-a-date</hr:StartDate>
        <hr:ExpectedEndDate>2024-03-31</hr:ExpectedEndDate>
      </hr:AssignmentDateRange>
    </hr:Assignment>
    <hr:Assignment>
      <hr:AssignmentId>SECOND</hr:AssignmentId>
      <hr:AssignmentDateRange>
        <hr:StartDate>2024-01-01</hr:StartDate>
        <hr:ExpectedEndDate>2024-01-02</hr:ExpectedEndDate>
        <hr:ActualEndDate>2024-01-20</hr:ActualEndDate>
      </hr:AssignmentDateRange>
    </hr:Assignment>
  </hr:Body>
</hr:HRXMLRequest>
`

func date(y, m, d int) *civil.Date {
	return &civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func newTestReader() *Reader {
	return NewReader(logger.NewNopLogger()).(*Reader)
}

func TestReadV3Document(t *testing.T) {
	result, err := newTestReader().Read("ASS_1_A_ETT.xml", []byte(v3Document))
	require.NoError(t, err)

	assert.Equal(t, entity.SchemeV3, result.Scheme)
	assert.Equal(t, "source-1", result.SourceTransactID)
	require.NotNil(t, result.SourceTimestamp)
	assert.Equal(t, 8, result.SourceTimestamp.Hour())
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, "A-100", rec.AssignmentID)
	assert.Equal(t, "SUP-1", rec.StaffingSupplierID)
	assert.Equal(t, date(2024, 1, 1), rec.StartDate)
	assert.Equal(t, date(2024, 1, 10), rec.ExpectedEndDate)
	assert.Nil(t, rec.ActualEndDate)

	// Source flexibility dates are advisory, the window is recomputed
	assert.Equal(t, date(2024, 1, 8), rec.FlexMinDate)
	assert.Equal(t, date(2024, 1, 12), rec.FlexMaxDate)
	assert.Equal(t, date(2023, 12, 1), rec.SourceFlexMinDate)
	assert.Equal(t, date(2024, 2, 1), rec.SourceFlexMaxDate)

	assert.Equal(t, "ASS_1_A_ETT.xml", rec.SourceFilename)
	assert.NotNil(t, rec.Source)
	assert.Empty(t, rec.Warnings)
}

func TestReadBothSchemesYieldEqualRecords(t *testing.T) {
	r := newTestReader()

	v3, err := r.Read("v3.xml", []byte(v3Document))
	require.NoError(t, err)
	v2, err := r.Read("v2.xml", []byte(v2Document))
	require.NoError(t, err)

	require.Len(t, v3.Records, 1)
	require.Len(t, v2.Records, 1)
	a, b := v3.Records[0], v2.Records[0]

	assert.Equal(t, entity.SchemeV2, b.Scheme)
	assert.Equal(t, a.AssignmentID, b.AssignmentID)
	assert.Equal(t, a.StaffingSupplierID, b.StaffingSupplierID)
	assert.Equal(t, a.StartDate, b.StartDate)
	assert.Equal(t, a.ExpectedEndDate, b.ExpectedEndDate)
	assert.Equal(t, a.FlexMinDate, b.FlexMinDate)
	assert.Equal(t, a.FlexMaxDate, b.FlexMaxDate)
}

func TestReadBatchKeepsDocumentOrder(t *testing.T) {
	result, err := newTestReader().Read("batch.xml", []byte(batchDocument))
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "FIRST", result.Records[0].AssignmentID)
	assert.Equal(t, 0, result.Records[0].SourceIndex)
	assert.Equal(t, "SECOND", result.Records[1].AssignmentID)
	assert.Equal(t, 2, result.Records[1].SourceIndex)

	// 31 days -> 6 flex days
	assert.Equal(t, date(2024, 3, 25), result.Records[0].FlexMinDate)
	assert.Equal(t, date(2024, 4, 6), result.Records[0].FlexMaxDate)

	// Incoherent actual end is kept as read
	assert.Equal(t, date(2024, 1, 20), result.Records[1].ActualEndDate)

	// The skipped record's field warning is kept alongside the skip notice
	require.Len(t, result.Warnings, 2)
	assert.True(t, errors.Is(result.Warnings[0], entity.ErrFieldParsing))
	assert.True(t, errors.Is(result.Warnings[1], entity.ErrMissingRequiredDate))

	// Each record owns its copy of the source tree
	assert.NotSame(t, result.Records[0].Source, result.Records[1].Source)
}

func TestReadMalformedDateDegradesField(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>
<hr:Assignment xmlns:hr="http://www.hr-xml.org/3">
  <hr:AssignmentId>A-7</hr:AssignmentId>
  <hr:AssignmentDateRange>
    <hr:StartDate>2024-01-01</hr:StartDate>
    <hr:ExpectedEndDate>2024-13-45</hr:ExpectedEndDate>
  </hr:AssignmentDateRange>
</hr:Assignment>`

	result, err := newTestReader().Read("single.xml", []byte(doc))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Equal(t, date(2024, 1, 1), rec.StartDate)
	assert.Nil(t, rec.ExpectedEndDate)
	assert.False(t, rec.HasFlexWindow())

	require.Len(t, rec.Warnings, 1)
	assert.True(t, errors.Is(rec.Warnings[0], entity.ErrFieldParsing))
	assert.Equal(t, tagExpectedEndDate, rec.Warnings[0].Field)
	assert.Equal(t, "2024-13-45", rec.Warnings[0].Detail)
}

func TestReadMalformedXML(t *testing.T) {
	_, err := newTestReader().Read("bad.xml", []byte(`<hr:Assignment xmlns:hr="http://www.hr-xml.org/3" broken></hr:Assignment>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrParsing))

	var e *entity.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "bad.xml", e.Filename)
	assert.NotEmpty(t, e.Detail)
}

func TestReadUnknownNamespaceYieldsWarning(t *testing.T) {
	doc := `<Assignment xmlns="urn:other"><AssignmentId>X</AssignmentId></Assignment>`

	result, err := newTestReader().Read("other.xml", []byte(doc))
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, tagAssignment, result.Warnings[0].Field)
}

func TestReadLatin1Content(t *testing.T) {
	doc := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<hr:Assignment xmlns:hr=\"http://www.hr-xml.org/3\">" +
		"<hr:AssignmentId>CAF\xc9-1</hr:AssignmentId>" +
		"<hr:AssignmentDateRange><hr:StartDate>2024-01-01</hr:StartDate>" +
		"<hr:ExpectedEndDate>2024-01-10</hr:ExpectedEndDate></hr:AssignmentDateRange>" +
		"</hr:Assignment>")

	result, err := newTestReader().Read("latin.xml", doc)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "CAFÉ-1", result.Records[0].AssignmentID)
}

func TestReadEnvelopeLogsWithFilename(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewReader(logger.NewFromZap(zap.New(core)))

	doc := strings.Replace(v3Document, "2024-01-02T08:30:00Z", "yesterday", 1)
	result, err := r.Read("ASS_1_A_ETT.xml", []byte(doc))
	require.NoError(t, err)
	assert.Nil(t, result.SourceTimestamp)
	assert.Equal(t, "source-1", result.SourceTransactID)

	entries := logs.FilterMessage("Ignoring unreadable envelope timestamp").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ASS_1_A_ETT.xml", entries[0].ContextMap()["filename"])
	assert.Equal(t, "yesterday", entries[0].ContextMap()["value"])
}

package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/iconsports/demandscope/engine/catalog"
	"github.com/iconsports/demandscope/engine/domain"
	"github.com/iconsports/demandscope/engine/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const semrushExport = `Keyword,Avg. monthly searches,Competition,YoY change,Country
pedri shirt,1000,HIGH,+20%,Spain
Pedri,500,LOW,10%,Spain
messi signed shirt,800,HIGH,-30%,United States
cr7 jersey,400,HIGH,,United States
gavi card,0,LOW,5%,Spain
weather today,9000,LOW,0%,United States
saka boots,300,MEDIUM,,
`

func TestImportReport(t *testing.T) {
	f := newFixture(t, nil)
	rows, err := ingest.ReadCSV(strings.NewReader(semrushExport))
	require.NoError(t, err)

	us, _ := catalog.FindMarket("United States")
	report, err := f.svc.ImportReport(context.Background(), rows, us)
	require.NoError(t, err)
	assert.Empty(t, f.provider.requests, "imports never call the provider")

	run := report.Run
	assert.Equal(t, domain.TestTypeImport, run.TestType)
	assert.Equal(t, ImportSource, run.Source)
	assert.Equal(t, ModeOffline, run.Metadata.APIMode)
	assert.Equal(t, []string{"Spain", "United States"}, run.Metadata.Markets)
	assert.Equal(t, []string{"Pedri", "Lionel Messi", "Cristiano Ronaldo", "Saka"}, run.Metadata.Entities)
	assert.Equal(t, 6, run.Metadata.KeywordCount)
	assert.Zero(t, run.Metadata.ActualCost)
	assert.Equal(t, 5, run.ProcessedResults.Processed)
	assert.Equal(t, 1, run.ProcessedResults.Dropped)
	assert.Equal(t, catalog.LocationSpain, run.RawResults["Spain"][0].LocationCode)

	profiles := run.ProcessedResults.Profiles
	require.Len(t, profiles, 4)
	pedri := profiles[0]
	assert.Equal(t, int64(1500), pedri.TotalVolume)
	assert.Equal(t, int64(1000), pedri.MerchVolume)
	assert.Equal(t, int64(500), pedri.EntityVolume)
	assert.InDelta(t, 15.0, pedri.TrendPercent, 1e-9)
	assert.Equal(t, "Spain", pedri.PrimaryMarket)
	assert.Positive(t, pedri.OpportunityScore)

	messi := profiles[1]
	assert.Equal(t, int64(800), messi.MerchVolume)
	assert.InDelta(t, -30.0, messi.TrendPercent, 1e-9)

	saka := profiles[3]
	assert.Equal(t, "United States", saka.PrimaryMarket, "rows without a country use the fallback market")
	assert.Zero(t, saka.TrendPercent)

	assert.FileExists(t, report.FilePath)
	assert.Equal(t, []string{run.ID}, f.sink.runIDs)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.TestTypeImport, f.publisher.events[0].TestType)
}

func TestImportReportValidation(t *testing.T) {
	f := newFixture(t, nil)
	us, _ := catalog.FindMarket("United States")

	_, err := f.svc.ImportReport(context.Background(), nil, us)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	rows := []ingest.Row{{Keyword: "pedri shirt", Volume: 10}}
	_, err = f.svc.ImportReport(context.Background(), rows, domain.Market{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Empty(t, f.sink.runIDs)
}

func TestImportReportIgnoresCostGuard(t *testing.T) {
	f := newFixture(t, func(o *Options) {
		o.Live = true
		o.Guard.AllowRealMoney = false
	})
	us, _ := catalog.FindMarket("United States")
	report, err := f.svc.ImportReport(context.Background(), []ingest.Row{{Keyword: "Gavi shirt", Volume: 40}}, us)
	require.NoError(t, err)
	assert.Equal(t, "Gavi", report.Run.ProcessedResults.Profiles[0].Name)
}

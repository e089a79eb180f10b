package server

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/joseph-ayodele/faktur-tracker/constants"
	"github.com/joseph-ayodele/faktur-tracker/internal/amounts"
	"github.com/joseph-ayodele/faktur-tracker/internal/async"
	"github.com/joseph-ayodele/faktur-tracker/internal/classify"
	"github.com/joseph-ayodele/faktur-tracker/internal/common"
	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/export"
	"github.com/joseph-ayodele/faktur-tracker/internal/pipeline"
	"github.com/joseph-ayodele/faktur-tracker/internal/repository"
)

const reference = "PT Sukses Makmur"

const faktur = `Faktur Pajak
Kode dan Nomor Seri Faktur Pajak : 010.000-24.00000001
Pengusaha Kena Pajak
Nama : PT MITRA SENTOSA ABADI
NPWP : 01.234.567.8-901.000
Pembeli Barang Kena Pajak / Penerima Jasa Kena Pajak
Nama : PT SUKSES MAKMUR
NPWP : 02.111.222.3-444.000
No. Nama Barang Kena Pajak / Jasa Kena Pajak
1 Jasa pemasangan mesin Rp 20.000.000,00
Dasar Pengenaan Pajak 20.000.000,00
Total PPN 2.200.000,00
Jakarta, 15 Maret 2024`

type recordingQueue struct {
	mu     sync.Mutex
	jobs   []async.Job
	closed bool
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return common.ErrQueueClosed
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) submitted() []async.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]async.Job(nil), q.jobs...)
}

func (q *recordingQueue) Shutdown(context.Context) {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

type fixture struct {
	client *ExtractionClient
	health grpc_health_v1.HealthClient
	queue  *recordingQueue
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	t.Cleanup(db.Close)

	invoices := repository.NewInvoiceRepository(db, nil)
	deposits := repository.NewDepositRepository(db, nil)
	jobs := repository.NewExtractJobRepository(db, nil)

	pages := pipeline.NewPageProcessor(pipeline.Config{Classify: classify.DefaultConfig(), Amounts: amounts.DefaultConfig()}, nil)
	proc := pipeline.NewProcessor(nil, pages, nil, nil, 2)
	queue := &recordingQueue{}

	svc := NewExtractionService(proc, queue, jobs, invoices, export.NewService(invoices, deposits, nil), reference, nil)
	srv, _ := NewGRPCServer(svc, nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &fixture{
		client: NewExtractionClient(conn),
		health: grpc_health_v1.NewHealthClient(conn),
		queue:  queue,
	}
}

func TestHealthServing(t *testing.T) {
	f := newFixture(t)
	for _, svc := range []string{"", serviceName} {
		resp, err := f.health.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: svc})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
	}
}

func TestProcessTextFaktur(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.ProcessText(context.Background(), &ProcessTextRequest{
		Pages: []string{faktur, "halaman kosong"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Document)
	require.Len(t, resp.Document.Pages, 2)

	recs := resp.Document.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].PageIndex)
	assert.Equal(t, constants.Inbound, recs[0].Direction)
	assert.Equal(t, "010.000-24.00000001", recs[0].Identity.Serial)
	assert.Equal(t, "20000000", recs[0].Amounts.TaxBase.String())

	errs := resp.Document.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].PageIndex)
	assert.Equal(t, "halaman kosong", errs[0].RawText)
}

func TestProcessTextNormalizesSpacing(t *testing.T) {
	f := newFixture(t)
	page := strings.NewReplacer("Dasar Pengenaan", "Dasar\tPengenaan", "Total PPN", "Total  PPN", "\n", "\r\n").Replace(faktur)

	resp, err := f.client.ProcessText(context.Background(), &ProcessTextRequest{Pages: []string{page}})
	require.NoError(t, err)

	recs := resp.Document.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "20000000", recs[0].Amounts.TaxBase.String())
	assert.Equal(t, "anchor", recs[0].Amounts.TaxBaseSource)
	assert.NotContains(t, recs[0].RawText, "\t")
}

func TestProcessTextDeposits(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.ProcessText(context.Background(), &ProcessTextRequest{
		Kind:  "bukti",
		Pages: []string{"NTPN : 0A1B2C3D4E5F6G7H\nTanggal 12 Nopember 2024\nJumlah Setor Rp 1.500.000,00"},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Document)
	require.Len(t, resp.Deposits, 1)
	assert.Equal(t, "0A1B2C3D4E5F6G7H", resp.Deposits[0].PaymentCode)
	assert.False(t, resp.Deposits[0].NeedsManualEntry)
}

func TestProcessTextRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.client.ProcessText(ctx, &ProcessTextRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.ProcessText(ctx, &ProcessTextRequest{Kind: "kuitansi", Pages: []string{"x"}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSubmitFileAndGetJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.client.SubmitFile(ctx, &SubmitFileRequest{Path: "/inbox/faktur_maret.pdf"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.JobID)

	jobs := f.queue.submitted()
	require.Len(t, jobs, 1)
	job := jobs[0]
	assert.Equal(t, resp.JobID, job.ID.String())
	assert.Equal(t, reference, job.ReferenceName)
	assert.Equal(t, constants.KindFaktur, job.Kind)

	got, err := f.client.GetJob(ctx, &GetJobRequest{JobID: resp.JobID})
	require.NoError(t, err)
	assert.Equal(t, string(constants.JobStatusQueued), got.Job.Status)
	assert.Equal(t, constants.PDF, got.Job.Format)
	assert.Equal(t, "/inbox/faktur_maret.pdf", got.Job.SourcePath)

	_, err = f.client.SubmitFile(ctx, &SubmitFileRequest{Path: "/inbox/notes.docx"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.GetJob(ctx, &GetJobRequest{JobID: "not-a-uuid"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.client.GetJob(ctx, &GetJobRequest{JobID: "6f1c2d4e-0000-4000-8000-000000000000"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestSubmitFileAfterShutdownRecordsFailure(t *testing.T) {
	f := newFixture(t)
	f.queue.Shutdown(context.Background())

	_, err := f.client.SubmitFile(context.Background(), &SubmitFileRequest{Path: "/inbox/setor.png", Kind: "bukti_setor"})
	assert.Equal(t, codes.Unavailable, status.Code(err))
	assert.Empty(t, f.queue.submitted())
}

func TestSaveInvoicesReportsPerItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	processed, err := f.client.ProcessText(ctx, &ProcessTextRequest{Pages: []string{faktur}})
	require.NoError(t, err)
	recs := processed.Document.Records()
	require.Len(t, recs, 1)

	good, err := json.Marshal(entity.InvoiceFromRecord(recs[0]))
	require.NoError(t, err)
	bad := json.RawMessage(`{"direction":"UNRESOLVED","date":"2024-03-15","serial":"x","tax_base":"1","vat":"1"}`)

	resp, err := f.client.SaveInvoices(ctx, &SaveInvoicesRequest{Invoices: []json.RawMessage{good, good, bad}})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, 1, resp.Saved)

	assert.Equal(t, SaveStatusSaved, resp.Results[0].Status)
	assert.NotEmpty(t, resp.Results[0].ID)
	assert.Equal(t, SaveStatusDuplicate, resp.Results[1].Status)
	assert.Equal(t, "010.000-24.00000001", resp.Results[1].Serial)
	assert.Equal(t, SaveStatusInvalid, resp.Results[2].Status)
	for i, r := range resp.Results {
		assert.Equal(t, i, r.Index)
	}

	exp, err := f.client.ExportInvoices(ctx, &ExportInvoicesRequest{Direction: "masukan", FromDate: "2024-03-01"})
	require.NoError(t, err)
	assert.NotEmpty(t, exp.Workbook)
	assert.Contains(t, exp.Filename, "rekap_ppn_")

	_, err = f.client.ExportInvoices(ctx, &ExportInvoicesRequest{Direction: "sideways"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = f.client.ExportInvoices(ctx, &ExportInvoicesRequest{ToDate: "15/03/2024"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

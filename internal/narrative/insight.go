package narrative

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/edrs/internal/model"
)

// ratioAbsentBelow is the ratio under which no last payment is reported.
const ratioAbsentBelow = 1e-6

const (
	edrsDefinition = "EDRS (Early Delinquency Risk Score) adalah skor aturan untuk mengestimasi risiko " +
		"keterlambatan dini. Skor tinggi menandakan risiko menunggak lebih besar. " +
		"Kisaran praktis pada data ini sekitar 0 hingga 12. Nilai 0 sampai 1 aman, " +
		"2 sampai 3 menengah, 4 sampai 5 tinggi, dan 6 atau lebih sangat tinggi."
	limitDefinition = "LIMIT BAL adalah batas kredit aktif yang disetujui untuk nasabah. " +
		"Semakin besar limit, eksposur potensi kerugian lebih tinggi meskipun skor risiko tetap " +
		"ditentukan oleh perilaku bayar dan indikator lain."
	rescheduleDefinition = "Reschedule yang dimaksud adalah penjadwalan ulang secara ringan untuk membantu " +
		"pemulihan kedisiplinan bayar. Contohnya memajukan atau memundurkan tanggal bayar " +
		"pada bulan berjalan, membuat rencana cicilan atas tunggakan, atau penyesuaian jangka " +
		"pendek lain. Bila kendala berlanjut, evaluasi restrukturisasi yang lebih formal dapat dipertimbangkan."
)

// RatioText describes the last-payment ratio.
func RatioText(ratio float64) string {
	if ratio < ratioAbsentBelow || ratio != ratio {
		return "rasio pembayaran terakhir tidak ada"
	}
	return fmt.Sprintf("rasio pembayaran terakhir sekitar %.0f%% dari tagihan terakhir", ratio*100)
}

// Insight writes the deterministic risk summary of an account. percentile is
// the LIMIT_BAL percentile rank in (0, 1]; zero means unknown.
func Insight(s model.ScoredAccount, percentile float64) string {
	pctText := "dalam kisaran umum portofolio"
	if percentile > 0 {
		pctText = fmt.Sprintf("lebih tinggi daripada sekitar %.0f%% pelanggan", percentile*100)
	}

	trend := "stabil"
	if s.Features.BillTrendUp {
		trend = "meningkat"
	}

	lines := []string{
		fmt.Sprintf("ID %d memiliki limit kredit aktif (LIMIT_BAL) sebesar %s. Nilai limit ini %s.",
			s.ID(), groupThousands(int64(s.Account.LimitBal)), pctText),
		fmt.Sprintf("Dalam enam bulan terakhir terjadi %d keterlambatan dengan %d kejadian pada tiga bulan terakhir.",
			s.Features.CountTelat6m, s.Features.CountTelat3m),
		fmt.Sprintf("Keterlambatan terlama tercatat %d bulan.", s.Features.MaxTunggakan6m),
		fmt.Sprintf("Tren tagihan %s dan %s.", trend, RatioText(s.Features.RatioBayarLast)),
		fmt.Sprintf("Nasabah tergolong %s dengan EDRS score %d.", s.Bucket, s.Score),
		edrsDefinition,
		limitDefinition,
		fmt.Sprintf("Rekomendasi saat ini adalah %s. %s", s.Action, rescheduleDefinition),
	}
	return strings.Join(lines, " ")
}

// groupThousands formats n with comma thousands separators.
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

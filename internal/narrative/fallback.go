package narrative

import (
	"strings"

	"github.com/Veraticus/edrs/internal/model"
	"github.com/Veraticus/edrs/internal/scoring"
)

// Fallback writes the deterministic conclusion used when the LLM is
// unavailable.
func Fallback(s model.ScoredAccount) string {
	var lines []string
	if s.Bucket.Actionable() {
		lines = append(lines,
			"Risiko gagal bayar tinggi sehingga dasar penagihan menekankan wanprestasi sesuai perikatan.",
			"Sebagai langkah awal tim melakukan klarifikasi kewajiban bayar, mengirim somasi yang proporsional, serta menawarkan restruktur ringan apabila layak.")
	} else {
		lines = append(lines,
			"Risiko berada pada tingkat menengah atau lebih rendah sehingga pendekatan persuasif dan penguatan komitmen bayar lebih diutamakan.")
	}
	if s.Features.DPDProxyNow >= 1 {
		lines = append(lines,
			"Status DPD saat ini mengindikasikan keterlambatan yang dapat dikualifikasikan sebagai wanprestasi.")
	}
	if s.Features.RatioBayarLast < scoring.PaymentRatioFloor {
		lines = append(lines,
			"Rasio pembayaran terakhir berada di bawah ambang normal sehingga mengindikasikan pelemahan kemampuan bayar.")
	}
	lines = append(lines,
		"Dasar hukum mengacu pada hukum perdata, kontrak, dan perjanjian terutama klausul wanprestasi dan denda sesuai kesepakatan.",
		"Apabila debitur tetap mengelak atau menolak membayar tim menempuh somasi lanjutan dan gugatan perdata untuk pemenuhan perikatan atau ganti rugi.",
		"Karena adanya pasal sanksi yang disetujui para pihak di dalam perjanjian eksekusi jaminan atau penarikan barang dapat dilakukan apabila perjanjian memuat jaminan atau klausul sanksi yang sah dan seluruh prosedur formal dipenuhi misalnya melalui titel eksekutorial atau penetapan atau putusan pengadilan yang berlaku tanpa tindakan sepihak yang melanggar hukum.",
		"Izinkan tim collection melakukan dokumentasi seluruh tahapan penagihan sebagai bukti bahwa tata cara telah dilakukan secara prosedural serta simpan seluruh komunikasi tagihan dan pembayaran secara lengkap.")
	return strings.Join(lines, " ")
}

package narrative

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ArticleGroup is a category of legal articles the final narrative may cite.
type ArticleGroup struct {
	Category string
	Articles []string
}

// AllowedArticles is the canonical citation list, in presentation order.
var AllowedArticles = []ArticleGroup{
	{
		Category: "Perikatan/Wanprestasi",
		Articles: []string{
			"KUHPerdata Pasal 1238 (debitur dinyatakan lalai)",
			"KUHPerdata Pasal 1243 (ganti rugi karena wanprestasi)",
			"KUHPerdata Pasal 1244-1245 (alasan pembebasan/tidak dipenuhinya perikatan)",
		},
	},
	{
		Category: "Syarat & Asas Perjanjian",
		Articles: []string{
			"KUHPerdata Pasal 1320 (syarat sah perjanjian)",
			"KUHPerdata Pasal 1338 (pacta sunt servanda/kebebasan berkontrak)",
			"KUHPerdata Pasal 1339 (kepatutan/kebiasaan melengkapi perjanjian)",
		},
	},
	{
		Category: "Pembatalan/Perubahan",
		Articles: []string{
			"KUHPerdata Pasal 1266-1267 (pembatalan perjanjian bersyarat)",
		},
	},
	{
		Category: "PMH (opsional)",
		Articles: []string{
			"KUHPerdata Pasal 1365 (perbuatan melawan hukum, gunakan hanya bila relevan di luar kontrak)",
		},
	},
}

// CanonicalArticles renders groups as an indented JSON object keyed by
// category. Key order follows the slice.
func CanonicalArticles(groups []ArticleGroup) string {
	var b strings.Builder
	b.WriteString("{")
	for i, g := range groups {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n  ")
		b.WriteString(quote(g.Category))
		b.WriteString(": [")
		for j, a := range g.Articles {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString("\n    ")
			b.WriteString(quote(a))
		}
		if len(g.Articles) > 0 {
			b.WriteString("\n  ")
		}
		b.WriteString("]")
	}
	if len(groups) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSpace(buf.String())
}

const step1Template = `Anda adalah analis hukum internal untuk Indonesia.
Tulis satu paragraf naratif yang langsung ke inti tanpa heading, tanpa bullet, dan tanpa simbol khusus seperti # * - — : ;.
Gunakan 7 sampai 12 kalimat, Bahasa Indonesia formal, ringkas dan jelas.
Sebutkan jenis fasilitas secara eksplisit sebagai "limit kredit aktif (LIMIT_BAL)" saat menyebut besaran limit.
Fokus pada ranah perdata/kontrak/perjanjian, jelaskan fakta pembayaran, indikasi wanprestasi, posisi hak dan kewajiban para pihak, opsi penanganan yang layak seperti somasi atau restruktur ringan, serta pentingnya dokumentasi bukti.
Pada tahap ini jangan menyebut pasal atau nomor aturan apa pun.

Ringkasan risiko:
%s

Data konteks JSON:
%s
`

const step2Template = `Anda melanjutkan draf naratif berikut dari Tahap 1.
Hasil akhir harus berupa satu paragraf natural, tanpa heading, tanpa daftar, dan tanpa simbol # * - — : ;.
Masukkan rujukan pasal HANYA dari daftar kanonik di bawah ini, ditulis natural di dalam kalimat (misal: berdasarkan KUHPerdata Pasal 1238).
Tegaskan apa yang boleh dilakukan tim collection bila debitur tetap mengelak atau menolak membayar:
somasi lanjutan, gugatan perdata untuk pemenuhan perikatan atau ganti rugi, serta eksekusi jaminan/penarikan barang
karena adanya pasal sanksi yang disepakati para pihak dalam perjanjian, dengan syarat perjanjian memang memuat jaminan/klausul sanksi yang sah dan seluruh prosedur hukum dipenuhi
(contoh: jaminan fidusia dengan titel eksekutorial atau berdasarkan penetapan/putusan pengadilan).
Tambahkan satu kalimat yang menyatakan bahwa tim collection diizinkan melakukan dokumentasi seluruh tahapan penagihan untuk bukti bahwa tata cara telah dilakukan secara prosedural.
Hindari tindakan sepihak yang bertentangan dengan hukum, termasuk kekerasan atau ancaman, dan tekankan kepatuhan pada aturan perlindungan konsumen yang berlaku.

Daftar kanonik pasal yang boleh dirujuk:
%s

Draf Tahap 1:
%s
`

// DraftPrompt builds the first-stage prompt: a citation-free draft from the
// insight and the account facts.
func DraftPrompt(c Context, insight string) (string, error) {
	facts, err := c.JSON()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(step1Template, insight, facts), nil
}

// FinalPrompt builds the second-stage prompt that rewrites draft with
// citations drawn only from AllowedArticles.
func FinalPrompt(draft string) string {
	return fmt.Sprintf(step2Template, CanonicalArticles(AllowedArticles), draft)
}

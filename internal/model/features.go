package model

// Features is the derived behavioral indicator set for one account.
type Features struct {
	CountTelat3m     int     `json:"count_telat_3m"`
	CountTelat6m     int     `json:"count_telat_6m"`
	MaxTunggakan6m   int     `json:"max_tunggakan_6m"`
	RatioBayarLast   float64 `json:"ratio_bayar_last"`
	BillTrendUp      bool    `json:"bill_trend_up"`
	DPDProxyNow      int     `json:"dpd_proxy_now"`
	StreakTelat2Plus int     `json:"streak_telat2plus"`
}

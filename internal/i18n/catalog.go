package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// messages holds every display string per locale. Values are fmt-style
// formats; a literal percent sign is written as %%.
var messages = map[Locale]map[string]string{
	Indonesian: {
		"title":                  "Split Bill",
		"subtitle":               "Bagi tagihan restoran dengan mudah dan akurat",
		"count.heading":          "Berapa Orang?",
		"count.label":            "Jumlah Orang (%d-%d)",
		"count.continue":         "Lanjutkan",
		"orders.heading":         "Input Pesanan",
		"orders.reset":           "Mulai Ulang",
		"orders.label":           "Pesanan:",
		"orders.add":             "Tambah Pesanan",
		"orders.remove":          "Hapus",
		"person.placeholder":     "Nama Orang %d",
		"person.fallback":        "Orang %d",
		"order.placeholder":      "Nama pesanan",
		"extras.heading":         "Biaya Tambahan",
		"extras.tax":             "Pajak Restoran (%%)",
		"extras.additional":      "Biaya Tambahan (Rp)",
		"extras.additional_hint": "Service charge, parkir, dll",
		"calculate":              "Hitung Split Bill",
		"summary.heading":        "Hasil Split Bill",
		"summary.back":           "Kembali",
		"summary.download":       "Download PNG",
		"summary.title":          "Split Bill Result",
		"summary.grand_total":    "Total Keseluruhan: %s",
		"summary.charges":        "Pajak: %s%% - Biaya Tambahan: %s",
		"summary.orders":         "Pesanan:",
		"summary.subtotal":       "Subtotal:",
		"summary.tax":            "Pajak (%s%%):",
		"summary.additional":     "Biaya Tambahan:",
		"summary.total":          "Total:",
		"summary.generated":      "Dibuat pada %s",
		"error.count_range":      "Jumlah orang harus antara %d-%d",
		"error.missing_orders":   "%s belum memiliki pesanan yang valid",
		"error.invalid_step":     "Langkah ini tidak tersedia saat ini",
		"error.export":           "Gagal mendownload gambar. Silakan coba lagi.",
		"footer":                 "Split Bill App",
	},
	English: {
		"title":                  "Split Bill",
		"subtitle":               "Split restaurant bills easily and accurately",
		"count.heading":          "How Many People?",
		"count.label":            "Number of People (%d-%d)",
		"count.continue":         "Continue",
		"orders.heading":         "Enter Orders",
		"orders.reset":           "Start Over",
		"orders.label":           "Orders:",
		"orders.add":             "Add Order",
		"orders.remove":          "Remove",
		"person.placeholder":     "Person %d name",
		"person.fallback":        "Person %d",
		"order.placeholder":      "Order name",
		"extras.heading":         "Additional Costs",
		"extras.tax":             "Restaurant Tax (%%)",
		"extras.additional":      "Additional Cost (Rp)",
		"extras.additional_hint": "Service charge, parking, etc.",
		"calculate":              "Calculate Split Bill",
		"summary.heading":        "Split Bill Result",
		"summary.back":           "Back",
		"summary.download":       "Download PNG",
		"summary.title":          "Split Bill Result",
		"summary.grand_total":    "Grand Total: %s",
		"summary.charges":        "Tax: %s%% - Additional Cost: %s",
		"summary.orders":         "Orders:",
		"summary.subtotal":       "Subtotal:",
		"summary.tax":            "Tax (%s%%):",
		"summary.additional":     "Additional Cost:",
		"summary.total":          "Total:",
		"summary.generated":      "Generated on %s",
		"error.count_range":      "Number of people must be between %d-%d",
		"error.missing_orders":   "%s does not have a valid order yet",
		"error.invalid_step":     "This step is not available right now",
		"error.export":           "Failed to download the image. Please try again.",
		"footer":                 "Split Bill App",
	},
}

var (
	weekdays = map[Locale][7]string{
		Indonesian: {"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"},
		English:    {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	}
	months = map[Locale][12]string{
		Indonesian: {"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"},
		English:    {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	}
)

var messageCatalog = mustBuildCatalog()

func mustBuildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Indonesian))
	for locale, entries := range messages {
		tag := locale.Tag()
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("i18n: register %s/%s: %v", locale, key, err))
			}
		}
	}
	return b
}

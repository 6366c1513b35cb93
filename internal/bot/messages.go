package bot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

// Customer-facing texts. The audience is Turkish; do not translate.
const (
	msgAskName          = "Merhaba! Size hitap edebilmemiz için lütfen adınızı soyadınızı yazar mısınız?"
	msgInvalidName      = "Lütfen geçerli bir isim giriniz."
	msgInvalidService   = "Geçersiz hizmet numarası. Lütfen tekrar deneyin."
	msgInvalidBarber    = "Geçersiz berber numarası. Lütfen tekrar deneyin."
	msgInvalidDate      = "Geçersiz tarih formatı. 'Bugün', 'Yarın' veya GG.AA.YYYY formatında girin (Örn: 25.11.2023)."
	msgInvalidTime      = "Geçersiz saat formatı. Lütfen SS:DD formatında girin (Örn: 09:00 veya 14.30)."
	msgNoSlots          = "Seçtiğiniz tarihte uygun saat kalmadı. Lütfen başka bir tarih seçiniz."
	msgSlotTaken        = "Seçtiğiniz saat dolu. Lütfen başka bir saat belirtiniz."
	msgClosedForTime    = "Üzgünüz, seçtiğiniz tarihte işletmemiz kapalıdır. Lütfen başka bir tarih seçiniz."
	msgNoCancellable    = "İptal edilecek aktif randevunuz bulunmamaktadır."
	msgInvalidCancelIdx = "Geçersiz numara. Lütfen tekrar deneyin veya 'vazgeç' yazın."
	msgCancelled        = "Randevunuz başarıyla iptal edilmiştir."
	msgNotFound         = "Randevu bulunamadı."
	msgCancelAborted    = "İptal işlemi vazgeçildi."
	msgYesOrNo          = "Lütfen 'Evet' veya 'Hayır' yazınız."
	msgReset            = "Bir hata oluştu. Başa dönüyoruz."
)

const localDateLayout = "02.01.2006"
const localDateTimeLayout = "02.01.2006 15:04"

func msgNameSaved(name string) string {
	return fmt.Sprintf("Memnun oldum %s! Randevu almak için 'Randevu' yazabilirsin.", name)
}

func msgHelp(name string) string {
	return fmt.Sprintf("Merhaba %s! Randevu almak için 'Randevu', randevu iptali için 'İptal' yazınız.", name)
}

func msgServiceMenu(name string, services []*models.Service) string {
	items := make([]string, 0, len(services))
	for i, s := range services {
		items = append(items, fmt.Sprintf("%d. %s (%s TL)", i+1, s.Name, formatPrice(s.Price)))
	}
	return fmt.Sprintf("Hoş geldiniz %s! Lütfen bir hizmet seçin (Numarasını yazın):\n%s",
		name, strings.Join(items, "\n"))
}

func msgBarberMenu(serviceName string, barbers []*models.StaffMember) string {
	items := make([]string, 0, len(barbers))
	for i, b := range barbers {
		items = append(items, fmt.Sprintf("%d. %s", i+1, b.Username))
	}
	return fmt.Sprintf("Harika! %s seçtiniz. Şimdi bir berber seçin:\n%s",
		serviceName, strings.Join(items, "\n"))
}

func msgAskDate(barberName string) string {
	return fmt.Sprintf("%s seçildi. Hangi tarihte gelmek istersiniz? (Örn: 25.11.2023, Bugün, Yarın)", barberName)
}

func msgClosedDate(date, now time.Time) string {
	return fmt.Sprintf("Seçtiğiniz tarihte (%s) işletmemiz kapalıdır. Lütfen başka bir tarih giriniz (Örn: Yarın, %s).",
		date.Format(localDateLayout),
		timeutil.ToBusiness(now).AddDate(0, 0, 2).Format(localDateLayout))
}

func msgSlotMenu(date time.Time, slots []string) string {
	return fmt.Sprintf("Tarih: %s. Lütfen saat seçin:\n%s",
		date.Format(localDateLayout), strings.Join(slots, "\n"))
}

func msgOutsideHours(open, close string) string {
	return fmt.Sprintf("Üzgünüz, çalışma saatlerimiz %s - %s arasındadır. Lütfen bu saatler arasında bir zaman seçiniz.",
		open, close)
}

func msgBooked(startLocal time.Time) string {
	return fmt.Sprintf("Randevu talebiniz alındı! %s tarihi için onay bekleniyor. Onaylandığında size bilgi vereceğiz.",
		startLocal.Format(localDateTimeLayout))
}

// msgCancelMenu lists the customer's upcoming appointments with the barber
// and service resolved by the caller, one entry per appointment.
func msgCancelMenu(items []string) string {
	return fmt.Sprintf("Lütfen iptal etmek istediğiniz randevunun numarasını yazınız:\n%s",
		strings.Join(items, "\n"))
}

func msgConfirmCancel(startUTC time.Time) string {
	return fmt.Sprintf("%s tarihli randevunuzu iptal etmek istediğinize emin misiniz? (Evet/Hayır)",
		timeutil.ToBusiness(startUTC).Format(localDateTimeLayout))
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

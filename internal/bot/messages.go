package bot

// Callback payloads routed by the dispatcher.
const (
	callbackCheckSubscription = "check_subscription"
	callbackAdminAddBook      = "admin_add_book"
	callbackAdminBookList     = "admin_book_list"
	callbackAdminStats        = "admin_stats"
	callbackAdminBroadcast    = "admin_broadcast"
	callbackCancelDelete      = "cancel_delete"
	prefixDeleteBook          = "delete_book_"
	prefixConfirmDelete       = "confirm_delete_"
)

// User-facing texts, in Uzbek like the channels this bot serves.
const (
	msgGreeting = "Assalomu alaykum, %s! 👋\n\n" +
		"📚 Kitob olish uchun quyidagi kanallarga obuna bo'ling:\n\n" +
		"Obuna bo'lgach, pastdagi tugmani bosing."
	msgSubscribed = "✅ Rahmat! Barcha kanallarga obuna bo'ldingiz.\n\n" +
		"📝 Endi kitob kodini yuboring (masalan: ABC123):"
	msgNotSubscribed = "❌ Siz hali barcha kanallarga obuna bo'lmagansiz.\n\n" +
		"Iltimos, barcha kanallarga obuna bo'lib, qaytadan tekshiring."
	msgInvalidCode = "❌ Noto'g'ri kod kiritildi. Iltimos, kodni tekshirib qayta urinib ko'ring.\n\n" +
		"💡 Maslahat: Kod harflari katta bo'lishi kerak (masalan: ABC123)"
	msgDeliveryFailed = "❌ Fayllarni yuborishda xatolik yuz berdi. Iltimos, qayta urinib ko'ring."
	msgPromo          = "📌 Ushbu kitobning batafsil tahlili va muhokamasi uchun bizning kanalimizga tashrif buyuring: %s"
	msgRateLimited    = "⏳ Juda ko'p urinish. Iltimos, birozdan keyin qayta urinib ko'ring."
	msgGenericError   = "❌ Xatolik yuz berdi. Iltimos, qayta urinib ko'ring."

	msgButtonConfirmSub = "✅ Obuna bo'ldim"
	msgButtonRetrySub   = "🔁 Qayta tekshirish"

	msgNotAdmin  = "❌ Sizda admin huquqlari yo'q."
	msgAdminMenu = "🔧 Admin Panel\n\nQuyidagi amallardan birini tanlang:"
	msgCancelled = "❌ Amal bekor qilindi."

	msgEnterBookCode  = "📝 Yangi kitob kodi kiriting (masalan: ABC123):"
	msgCodeExists     = "❌ %s kodi allaqachon mavjud."
	msgEnterBookTitle = "📝 %s uchun kitob nomini kiriting:"
	msgUploadBookFile = "📎 Kitob faylini yuklang (PDF format):"
	msgNeedDocument   = "❌ Iltimos, fayl yuklang."
	msgFileTooLarge   = "❌ Fayl hajmi juda katta (maksimal 50MB)."
	msgBookPDFOnly    = "❌ Faqat PDF formatdagi fayllar qabul qilinadi."
	msgTestFormats    = "❌ Faqat PDF, DOC yoki DOCX formatdagi fayllar qabul qilinadi."
	msgCorruptPDF     = "❌ PDF faylni o'qib bo'lmadi. Iltimos, boshqa fayl yuklang."
	msgUploadFailed   = "❌ Faylni yuklashda xatolik yuz berdi."
	msgBookFileSaved  = "✅ Kitob fayli yuklandi.\n\n📎 Endi test faylini yuklang (PDF yoki DOC):"
	msgBookAdded      = "✅ %s kitob muvaffaqiyatli qo'shildi!\n\n📖 Nom: %s\n📁 Kod: %s"
	msgBookSaveFailed = "❌ Kitobni saqlashda xatolik yuz berdi."

	msgNoBooks       = "📚 Hozircha kitoblar yo'q."
	msgBookNotFound  = "❌ Kitob topilmadi."
	msgConfirmDelete = "⚠️ %s kitobini o'chirishni tasdiqlaysizmi?\n\nBu amal qaytarib bo'lmaydi!"
	msgDeleted       = "✅ %s kitob muvaffaqiyatli o'chirildi."
	msgDeleteFailed  = "❌ Kitobni o'chirishda xatolik yuz berdi."
	msgDeleteAborted = "❌ O'chirish bekor qilindi."

	msgEnterBroadcast    = "📝 Barcha foydalanuvchilarga yubormoqchi bo'lgan xabaringizni yozing:"
	msgBroadcastSending  = "📤 Xabar yuborilmoqda..."
	msgBroadcastFinished = "✅ Xabar yuborish yakunlandi!\n\n📤 Yuborildi: %d\n❌ Yuborilmadi: %d"
)

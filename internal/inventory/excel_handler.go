package inventory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"venue-backend/internal/database"
	"venue-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

var (
	trailingAmountRe = regexp.MustCompile(`\s+[\d.,]+\s*(?:kg|gr|lt|cl|ml|g|l)\s*$`)
	numericOrUnitRe  = regexp.MustCompile(`^(?:[\d.,]+(?:kg|gr|lt|cl|ml|g|l)?|kg|gr|lt|cl|ml|g|l)$`)
)

// normalizeTurkish Türkçe karakterleri ASCII karşılıklarına çevirip küçük harfe indirir.
// Örn: "ÇİLEK ŞURUBU" -> "cilek surubu"
func normalizeTurkish(s string) string {
	replacements := map[rune]string{
		'ç': "c", 'Ç': "C",
		'ğ': "g", 'Ğ': "G",
		'ı': "i", 'İ': "I",
		'ö': "o", 'Ö': "O",
		'ş': "s", 'Ş': "S",
		'ü': "u", 'Ü': "U",
	}

	var result strings.Builder
	for _, r := range s {
		if replacement, ok := replacements[r]; ok {
			result.WriteString(replacement)
		} else {
			result.WriteRune(r)
		}
	}
	return strings.ToLower(result.String())
}

// normalizeIngredientName tedarikçi listesindeki adı eşleştirme için sadeleştirir.
// Örn: "ABSOLUT VODKA 70CL" -> "absolut vodka"
func normalizeIngredientName(s string) string {
	normalized := trailingAmountRe.ReplaceAllString(normalizeTurkish(strings.TrimSpace(s)), "")

	words := strings.Fields(normalized)
	cleaned := words[:0]
	for _, w := range words {
		if numericOrUnitRe.MatchString(w) {
			continue
		}
		cleaned = append(cleaned, w)
	}
	return strings.Join(cleaned, " ")
}

func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimSpace(row[0]))
	return strings.Contains(first, "MALZEME") || strings.Contains(first, "ÜRÜN") ||
		strings.Contains(first, "INGREDIENT") || strings.Contains(first, "NAME")
}

type RestockImportRow struct {
	Row          int    `json:"row"`
	Name         string `json:"name"`
	IngredientID uint   `json:"ingredient_id,omitempty"`
	Units        int    `json:"units"`
	Error        string `json:"error,omitempty"`
}

type RestockImportResponse struct {
	Applied   []RestockImportRow `json:"applied"`
	Unmatched []RestockImportRow `json:"unmatched"`
	Message   string             `json:"message"`
}

// POST /api/admin/ingredients/restock-import
// XLSX: A kolonu malzeme adı, B kolonu eklenecek kapalı birim sayısı. İlk satır başlık olabilir.
func ImportRestockHandler(adjuster StockAdjuster) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheets := excelFile.GetSheetList()
		if len(sheets) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}
		rows, err := excelFile.GetRows(sheets[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		var ingredients []models.Ingredient
		if err := database.DB.Find(&ingredients).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Malzemeler okunamadı")
		}
		byName := make(map[string]uint, len(ingredients))
		for _, ing := range ingredients {
			byName[normalizeIngredientName(ing.Name)] = ing.ID
		}

		resp := RestockImportResponse{
			Applied:   make([]RestockImportRow, 0),
			Unmatched: make([]RestockImportRow, 0),
		}

		start := 0
		if isHeaderRow(rows[0]) {
			start = 1
		}
		for i := start; i < len(rows); i++ {
			row := rows[i]
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			item := RestockImportRow{Row: i + 1, Name: strings.TrimSpace(row[0])}

			if len(row) < 2 {
				item.Error = "birim sayısı eksik"
				resp.Unmatched = append(resp.Unmatched, item)
				continue
			}
			units, err := strconv.Atoi(strings.TrimSpace(row[1]))
			if err != nil || units <= 0 {
				item.Error = "birim sayısı pozitif tam sayı olmalı"
				resp.Unmatched = append(resp.Unmatched, item)
				continue
			}
			item.Units = units

			id, ok := byName[normalizeIngredientName(item.Name)]
			if !ok {
				item.Error = "malzeme bulunamadı"
				resp.Unmatched = append(resp.Unmatched, item)
				continue
			}
			item.IngredientID = id

			var current models.Ingredient
			if err := database.DB.First(&current, id).Error; err != nil {
				item.Error = "malzeme okunamadı"
				resp.Unmatched = append(resp.Unmatched, item)
				continue
			}
			if err := adjuster.Restock(c.UserContext(), id, units); err != nil {
				item.Error = err.Error()
				resp.Unmatched = append(resp.Unmatched, item)
				continue
			}

			writeAudit(c, "ingredient", id, models.AuditActionUpdate,
				fmt.Sprintf("Excel ile stok girişi: %s +%d", current.Name, units), current, nil)
			resp.Applied = append(resp.Applied, item)
		}

		resp.Message = fmt.Sprintf("%d satır işlendi. %d satır eşleşmedi.", len(resp.Applied), len(resp.Unmatched))
		return c.JSON(resp)
	}
}

// GET /api/admin/stock-movements/export?date_from=2025-12-01&date_to=2025-12-31
func ExportStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Model(&models.StockMovement{})
		if d, err := time.Parse("2006-01-02", c.Query("date_from")); err == nil {
			query = query.Where("created_at >= ?", d)
		}
		if d, err := time.Parse("2006-01-02", c.Query("date_to")); err == nil {
			query = query.Where("created_at < ?", d.Add(24*time.Hour))
		}

		var movements []models.StockMovement
		if err := query.Order("id asc").Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketleri okunamadı")
		}

		names, err := entityNames(movements)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketleri okunamadı")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Hareketler"
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel oluşturulamadı")
		}
		header := []interface{}{"Tarih", "Sipariş", "Tip", "Kayıt", "Alan", "Önce", "Sonra", "Fark", "Sebep"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel oluşturulamadı")
		}

		for i, m := range movements {
			var orderID interface{}
			if m.OrderID != nil {
				orderID = *m.OrderID
			}
			row := []interface{}{
				m.CreatedAt.Format("2006-01-02 15:04:05"),
				orderID,
				m.EntityType,
				names[m.EntityType+":"+strconv.FormatUint(uint64(m.EntityID), 10)],
				m.Field,
				m.Before,
				m.After,
				m.After - m.Before,
				m.Reason,
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Excel oluşturulamadı")
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel oluşturulamadı")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="stok-hareketleri.xlsx"`)
		return c.Send(buf.Bytes())
	}
}

func entityNames(movements []models.StockMovement) (map[string]string, error) {
	var productIDs, ingredientIDs []uint
	for _, m := range movements {
		switch m.EntityType {
		case "product":
			productIDs = append(productIDs, m.EntityID)
		case "ingredient":
			ingredientIDs = append(ingredientIDs, m.EntityID)
		}
	}

	names := make(map[string]string)
	if len(productIDs) > 0 {
		var products []models.Product
		if err := database.DB.Select("id", "name").Find(&products, productIDs).Error; err != nil {
			return nil, err
		}
		for _, p := range products {
			names["product:"+strconv.FormatUint(uint64(p.ID), 10)] = p.Name
		}
	}
	if len(ingredientIDs) > 0 {
		var ingredients []models.Ingredient
		if err := database.DB.Select("id", "name").Find(&ingredients, ingredientIDs).Error; err != nil {
			return nil, err
		}
		for _, ing := range ingredients {
			names["ingredient:"+strconv.FormatUint(uint64(ing.ID), 10)] = ing.Name
		}
	}
	return names, nil
}

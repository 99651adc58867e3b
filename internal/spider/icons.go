package spider

import (
	"fmt"
	"strings"
	"wikispider/internal/wiki"
)

// Genshin file names share a common scheme across sources, only the host
// and the format differ.

// CharacterGameName extracts the internal name from an avatar icon file
// name, ex. UI_AvatarIcon_Ayaka -> Ayaka.
func CharacterGameName(icon string) string {
	return strings.TrimPrefix(icon, "UI_AvatarIcon_")
}

func CharacterIcons(gameName string, format wiki.IconFormat) []IconSpec {
	return []IconSpec{
		{Field: "icon", Filename: "UI_AvatarIcon_" + gameName, Format: format},
		{Field: "side", Filename: "UI_AvatarIcon_Side_" + gameName, Format: format},
		{Field: "gacha", Filename: "UI_Gacha_AvatarImg_" + gameName, Format: format},
		{Field: "gacha_card", Filename: fmt.Sprintf("UI_AvatarIcon_%s_Card", gameName), Format: format},
	}
}

// WeaponGameName extracts the internal name from a weapon icon file name,
// ex. UI_EquipIcon_Sword_Blunt -> Sword_Blunt.
func WeaponGameName(icon string) string {
	return strings.TrimPrefix(icon, "UI_EquipIcon_")
}

func WeaponIcons(gameName string, format wiki.IconFormat, awaken bool) []IconSpec {
	specs := []IconSpec{
		{Field: "icon", Filename: "UI_EquipIcon_" + gameName, Format: format},
	}
	if awaken {
		specs = append(specs, IconSpec{Field: "awaken", Filename: fmt.Sprintf("UI_EquipIcon_%s_Awaken", gameName), Format: format})
	}
	return append(specs, IconSpec{Field: "gacha", Filename: "UI_Gacha_EquipIcon_" + gameName, Format: format})
}

func ArtifactIcons(setID string, format wiki.IconFormat) []IconSpec {
	specs := make([]IconSpec, len(wiki.ArtifactIconSlots))
	for i, slot := range wiki.ArtifactIconSlots {
		specs[i] = IconSpec{
			Field:    slot.Field,
			Filename: fmt.Sprintf("UI_RelicIcon_%s_%d", setID, slot.Suffix),
			Format:   format,
		}
	}
	return specs
}

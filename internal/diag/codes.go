package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Входная валидация MIR
	MirInfo                Code = 1000
	MirMissingTerminator   Code = 1001
	MirTargetOutOfRange    Code = 1002
	MirLocalOutOfRange     Code = 1003
	MirUnwindToNonCleanup  Code = 1004
	MirYieldOutsideCoro    Code = 1005
	MirBadReceiver         Code = 1006
	MirReturnWithoutValue  Code = 1007
	MirSwitchMissingOtherw Code = 1008
	MirYieldInCleanup      Code = 1009

	// Лоуринг корутин
	LowerInfo             Code = 2000
	LowerWitnessGap       Code = 2001
	LowerAlreadyLowered   Code = 2002
	LowerConflictViolated Code = 2003
	LowerSkippedPlainFn   Code = 2004
	LowerBadInput         Code = 2005

	// Снапшоты и драйвер
	SnapInfo          Code = 3000
	SnapSchemaChanged Code = 3001
	SnapCorrupt       Code = 3002

	// Наблюдаемость
	ObsTimings Code = 4000
)

func (c Code) String() string {
	switch {
	case c >= 4000:
		return fmt.Sprintf("OBS%04d", uint16(c))
	case c >= 3000:
		return fmt.Sprintf("SNAP%04d", uint16(c))
	case c >= 2000:
		return fmt.Sprintf("LOW%04d", uint16(c))
	case c >= 1000:
		return fmt.Sprintf("MIR%04d", uint16(c))
	default:
		return fmt.Sprintf("COIL%04d", uint16(c))
	}
}

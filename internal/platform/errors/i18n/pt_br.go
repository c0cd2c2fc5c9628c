package i18n

var ptBR = map[string]string{
	KeySaved:      "Jogo salvo no espaço %d.",
	KeyAutoSaved:  "Salvamento automático no espaço %d.",
	KeyQuickSaved: "Salvamento rápido no espaço %d.",
	KeyLoaded:     "Espaço %d carregado.",
	KeyDeleted:    "Espaço %d apagado.",

	"INVALID_SLOT_INDEX": "O espaço %d não existe.",
	"SLOT_EMPTY":         "O espaço %d está vazio.",
	"CORRUPT_RECORD":     "O salvamento no espaço %d está corrompido.",
	"IO_FAILURE":         "Não foi possível acessar o espaço %d.",
	"INVALID_SNAPSHOT":   "Não foi possível salvar no espaço %d.",
	"ADAPTER_MISSING":    "Nada para salvar ou restaurar no espaço %d.",
	"SCENE_UNAVAILABLE":  "A área salva no espaço %d não está disponível.",
	"BUSY":               "Espaço %d: outro salvamento ou carregamento em andamento.",
	"UNKNOWN":            "Algo deu errado com o espaço %d.",
}

package engine

import "fmt"

// InputSlot — именованный входной слот стадии.
// Разрешается в выходной слот другой стадии (или в источник)
// по имени канала.
type InputSlot struct {
	// Channel — имя потребляемого канала.
	Channel string
}

// OutputSlot — именованный выходной слот стадии.
type OutputSlot struct {
	// Channel — имя производимого канала.
	Channel string

	// Glob — шаблон имён выходных файлов относительно
	// scratch-каталога task. Разрешается раннером после выхода процесса.
	Glob string

	// Publish — копировать ли совпавшие артефакты в каталог результатов.
	Publish bool
}

// SourceDef — внешний источник данных графа: канал, который
// наполняется при старте запуска (обнаруженные чтения, референс,
// таблица праймеров), а не какой-либо стадией.
type SourceDef struct {
	// Channel — имя канала-источника.
	Channel string

	// Kind — дисциплина канала.
	Kind Kind
}

// StageDef — неизменяемое описание одной стадии пайплайна.
//
// Стадия оборачивает одну непрозрачную внешнюю команду; цепочки
// пайпов внутри команды не декомпозируются — граница task это
// "один scratch-каталог, один код выхода".
type StageDef struct {
	// ID — уникальный идентификатор стадии.
	ID string

	// Name — человекочитаемое имя.
	Name string

	// PerSample — true, если стадия выполняется по одному task
	// на образец; false для whole-run стадий.
	PerSample bool

	// Branches — ветки, в которых стадия присутствует.
	// Пустой список означает "во всех ветках".
	Branches []Branch

	// CPUs — количество CPU-слотов, запрашиваемых task'ом.
	CPUs int

	// MemoryGB — декларативная подсказка по памяти для внешнего
	// процесса. Планировщиком не форсируется.
	MemoryGB int

	// TimeoutSec — лимит wall-clock времени task; 0 — без лимита.
	TimeoutSec int

	// Command — шаблон команды (text/template). Рендерится раннером
	// с подставленными путями входных артефактов и скалярами конфигурации.
	Command string

	// Inputs — входные слоты.
	Inputs []InputSlot

	// Outputs — выходные слоты.
	Outputs []OutputSlot
}

// InBranch проверяет, входит ли стадия в ветку.
func (s *StageDef) InBranch(b Branch) bool {
	if len(s.Branches) == 0 {
		return true
	}
	for _, sb := range s.Branches {
		if sb == b {
			return true
		}
	}
	return false
}

// Graph — неизменяемый граф стадий, связанных каналами.
//
// Граф владеет StageDef'ами и их связкой; живые tasks и наполнение
// каналов — зона ответственности планировщика.
type Graph struct {
	// Branch — ветка, выбранная при построении.
	Branch Branch

	// Stages — стадии выбранной ветки в топологическом порядке.
	Stages []*StageDef

	// Channels — все каналы графа по имени.
	Channels map[string]*Channel

	producers map[string]string   // канал → ID производящей стадии ("" для источников)
	consumers map[string][]string // канал → ID потребляющих стадий
}

// Build строит граф из упорядоченного списка стадий и источников.
//
// Алгоритм:
//  1. Отбор стадий выбранной ветки (решение принимается здесь один раз).
//  2. Проверка уникальности ID и ресурсных запросов.
//  3. Создание каналов; два производителя одного канала — ошибка.
//  4. Разрешение входных слотов; канал без производителя — ошибка.
//  5. Топологическая сортировка (алгоритм Кана); цикл — ошибка.
//
// Любая ошибка здесь — SetupError: ни один task ещё не создан.
func Build(defs []*StageDef, sources []SourceDef, branch Branch, cpuBudget int) (*Graph, error) {
	g := &Graph{
		Branch:    branch,
		Channels:  make(map[string]*Channel),
		producers: make(map[string]string),
		consumers: make(map[string][]string),
	}

	// 1. Отбор стадий ветки. Граф работает с копиями определений:
	// значения по умолчанию применяются к ним, вход вызывающего
	// не мутируется.
	var stages []*StageDef
	for _, def := range defs {
		if def.InBranch(branch) {
			st := *def
			stages = append(stages, &st)
		}
	}
	if len(stages) == 0 {
		return nil, ErrNoStages
	}

	// 2. Валидация стадий
	seen := make(map[string]bool)
	for _, st := range stages {
		if st.ID == "" {
			return nil, NewGraphError("", "", "stage has empty ID", ErrEmptyStageID)
		}
		if seen[st.ID] {
			return nil, NewGraphError(st.ID, "",
				fmt.Sprintf("duplicate stage ID: %s", st.ID), ErrDuplicateStageID)
		}
		seen[st.ID] = true

		if st.CPUs <= 0 {
			st.CPUs = 1
		}
		if cpuBudget > 0 && st.CPUs > cpuBudget {
			return nil, NewGraphError(st.ID, "",
				fmt.Sprintf("stage requests %d CPUs, budget is %d", st.CPUs, cpuBudget),
				ErrCPUsExceedBudget)
		}
	}

	// 3. Каналы источников
	for _, src := range sources {
		if _, exists := g.Channels[src.Channel]; exists {
			return nil, NewGraphError("", src.Channel,
				fmt.Sprintf("source channel declared twice: %s", src.Channel),
				ErrDuplicateProducer)
		}
		g.Channels[src.Channel] = NewChannel(src.Channel, src.Kind)
		g.producers[src.Channel] = ""
	}

	// Каналы выходных слотов
	for _, st := range stages {
		for _, out := range st.Outputs {
			if prod, exists := g.producers[out.Channel]; exists {
				return nil, NewGraphError(st.ID, out.Channel,
					fmt.Sprintf("channel %s already produced by %q", out.Channel, prod),
					ErrDuplicateProducer)
			}
			kind := ValueChannel
			if st.PerSample {
				kind = SampleChannel
			}
			g.Channels[out.Channel] = NewChannel(out.Channel, kind)
			g.producers[out.Channel] = st.ID
		}
	}

	// 4. Разрешение входных слотов
	for _, st := range stages {
		for _, in := range st.Inputs {
			ch, exists := g.Channels[in.Channel]
			if !exists {
				return nil, NewGraphError(st.ID, in.Channel,
					fmt.Sprintf("input channel %s has no producer", in.Channel),
					ErrUnresolvedSlot)
			}
			// Join whole-run стадии по per-sample каналу не определён:
			// у её единственного task нет ключа образца.
			if !st.PerSample && ch.Kind == SampleChannel {
				return nil, NewGraphError(st.ID, in.Channel,
					fmt.Sprintf("whole-run stage consumes per-sample channel %s", in.Channel),
					ErrWholeRunSampleInput)
			}
			g.consumers[in.Channel] = append(g.consumers[in.Channel], st.ID)
		}
	}

	// 5. Топологическая сортировка
	ordered, err := topoSort(stages, g.producers)
	if err != nil {
		return nil, err
	}
	g.Stages = ordered

	return g, nil
}

// topoSort выполняет топологическую сортировку стадий по рёбрам
// производитель→потребитель (алгоритм Кана). Возвращает ошибку,
// если обнаружен цикл.
func topoSort(stages []*StageDef, producers map[string]string) ([]*StageDef, error) {
	byID := make(map[string]*StageDef, len(stages))
	inDegree := make(map[string]int, len(stages))
	dependents := make(map[string][]string)

	for _, st := range stages {
		byID[st.ID] = st
		inDegree[st.ID] = 0
	}

	for _, st := range stages {
		for _, in := range st.Inputs {
			prod, ok := producers[in.Channel]
			if !ok || prod == "" || prod == st.ID {
				continue // источник
			}
			dependents[prod] = append(dependents[prod], st.ID)
			inDegree[st.ID]++
		}
	}

	// Очередь стадий без зависимостей, в порядке объявления
	var queue []string
	for _, st := range stages {
		if inDegree[st.ID] == 0 {
			queue = append(queue, st.ID)
		}
	}

	order := make([]*StageDef, 0, len(stages))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, byID[id])

		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(stages) {
		return nil, ErrCyclicGraph
	}
	return order, nil
}

// Channel возвращает канал по имени.
func (g *Graph) Channel(name string) *Channel {
	return g.Channels[name]
}

// Stage возвращает стадию по ID.
func (g *Graph) Stage(id string) *StageDef {
	for _, st := range g.Stages {
		if st.ID == id {
			return st
		}
	}
	return nil
}

// Producer возвращает ID стадии, производящей канал.
// Пустая строка означает источник.
func (g *Graph) Producer(channel string) (string, bool) {
	id, ok := g.producers[channel]
	return id, ok
}

// Consumers возвращает ID стадий, потребляющих канал.
func (g *Graph) Consumers(channel string) []string {
	return g.consumers[channel]
}

// SinkStages возвращает терминальные per-sample стадии: их выходные
// каналы не потребляет ни одна стадия графа. Образец считается
// успешным, когда каждая sink-стадия для него завершилась успехом.
func (g *Graph) SinkStages() []*StageDef {
	var sinks []*StageDef
	for _, st := range g.Stages {
		if !st.PerSample {
			continue
		}
		terminal := true
		for _, out := range st.Outputs {
			if len(g.consumers[out.Channel]) > 0 {
				terminal = false
				break
			}
		}
		if terminal {
			sinks = append(sinks, st)
		}
	}
	return sinks
}

// Size возвращает количество стадий графа.
func (g *Graph) Size() int {
	return len(g.Stages)
}

package engine

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TemplateData — данные для рендеринга шаблона команды стадии.
//
// В шаблонах доступны:
//   - {{ .Sample }}   — ключ образца
//   - {{ .CPUs }}     — выделенные CPU-слоты
//   - {{ .Amplicon }} — имя целевого ампликона
//   - {{ in "канал" N }}  — N-й путь входного слота
//   - {{ all "канал" }}   — все пути слота через пробел
type TemplateData struct {
	// Sample — ключ образца; пустой для whole-run стадий.
	Sample string

	// CPUs — CPU-слоты, выделенные task'у.
	CPUs int

	// Amplicon — имя целевого ампликона из конфигурации.
	Amplicon string

	// In — входные артефакты: имя канала → пути.
	In map[string][]string
}

// RenderCommand рендерит шаблон команды стадии.
//
// Отсутствующий слот или индекс — ошибка рендеринга, а не пустая
// подстановка: команда с дырой не должна дойти до /bin/sh.
func RenderCommand(command string, data *TemplateData) (string, error) {
	funcs := template.FuncMap{
		"in": func(channel string, i int) (string, error) {
			paths, ok := data.In[channel]
			if !ok {
				return "", fmt.Errorf("no input slot %q", channel)
			}
			if i < 0 || i >= len(paths) {
				return "", fmt.Errorf("input slot %q has %d paths, index %d", channel, len(paths), i)
			}
			return paths[i], nil
		},
		"all": func(channel string) (string, error) {
			paths, ok := data.In[channel]
			if !ok {
				return "", fmt.Errorf("no input slot %q", channel)
			}
			return strings.Join(paths, " "), nil
		},
	}

	tmpl, err := template.New("command").Funcs(funcs).Option("missingkey=error").Parse(command)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

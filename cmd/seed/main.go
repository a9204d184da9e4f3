package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"lodgeportal/internal/auth"
	"lodgeportal/internal/catalog"
	"lodgeportal/internal/entity"
)

type seedUser struct {
	Username string
	Name     string
	Email    string
	Password string
	Role     string
}

type credentialRecord struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type credentialsFile struct {
	Credentials struct {
		Usernames map[string]credentialRecord `yaml:"usernames"`
	} `yaml:"credentials"`
}

// seed populates DATA_DIR with a demo catalog, matching content files
// and a credentials config, ready for a local run of the portal.
func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	works := []entity.Work{
		{ID: "1", Titulo: "Os Simbolos do Primeiro Grau", Autor: "Carlos Pereira", Genero: "Simbolismo",
			Descricao: "Introducao aos simbolos apresentados na iniciacao.", GrauMinimo: "Aprendiz",
			Arquivo: "conteudo/aprendiz/simbolos-primeiro-grau.txt"},
		{ID: "2", Titulo: "Historia da Loja", Autor: "Bruno Costa", Genero: "Historia",
			Descricao: "Cronica da fundacao e dos primeiros anos da oficina.", GrauMinimo: "Aprendiz",
			Arquivo: "conteudo/aprendiz/historia-da-loja.txt"},
		{ID: "3", Titulo: "A Coluna do Norte", Autor: "Joao Oficial", Genero: "Simbolismo",
			Descricao: "Estudo sobre o posto do companheiro na loja.", GrauMinimo: "Companheiro",
			Arquivo: "conteudo/companheiro/coluna-do-norte.txt"},
		{ID: "4", Titulo: "Geometria e Arquitetura", Autor: "Bruno Costa", Genero: "Ciencias",
			Descricao: "As artes liberais no segundo grau.", GrauMinimo: "Companheiro",
			Arquivo: "conteudo/companheiro/geometria-e-arquitetura.txt"},
		{ID: "5", Titulo: "A Lenda do Terceiro Grau", Autor: "Jose da Silva", Genero: "Ritualistica",
			Descricao: "Comentarios sobre a lenda central da exaltacao.", GrauMinimo: "Mestre",
			Arquivo: "conteudo/mestre/lenda-terceiro-grau.txt"},
		{ID: "6", Titulo: "Atas de 2024", Autor: "Jose da Silva", Genero: "Administracao",
			Descricao: "Registro das sessoes ordinarias do ano.", GrauMinimo: "Mestre",
			Arquivo: "conteudo/mestre/atas-2024.txt"},
	}

	users := []seedUser{
		{Username: "paluno", Name: "Pedro Aluno", Email: "pedro@example.com", Password: "aprendiz123", Role: "aprendiz"},
		{Username: "joficial", Name: "Joao Oficial", Email: "joao@example.com", Password: "companheiro123", Role: "companheiro"},
		{Username: "jsilva", Name: "Jose da Silva", Email: "jose@example.com", Password: "mestre123", Role: "mestre"},
	}

	if err := os.MkdirAll(filepath.Join(dataDir, "assets"), 0o755); err != nil {
		log.Fatalf("create assets dir: %v", err)
	}

	for _, w := range works {
		dest := filepath.Join(dataDir, filepath.FromSlash(w.Arquivo))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			log.Fatalf("create content dir: %v", err)
		}
		body := fmt.Sprintf("%s\n%s\n\n%s\n", w.Titulo, strings.Repeat("=", len(w.Titulo)), w.Descricao)
		if err := os.WriteFile(dest, []byte(body), 0o644); err != nil {
			log.Fatalf("write content file %s: %v", dest, err)
		}
	}
	log.Printf("wrote %d content files under %s", len(works), dataDir)

	catalogPath := filepath.Join(dataDir, "catalogo.csv")
	if err := catalog.Persist(works, catalogPath); err != nil {
		log.Fatalf("write catalog: %v", err)
	}
	log.Printf("wrote catalog %s rows=%d", catalogPath, len(works))

	var creds credentialsFile
	creds.Credentials.Usernames = make(map[string]credentialRecord, len(users))
	for _, u := range users {
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			log.Fatalf("hash password for %s: %v", u.Username, err)
		}
		creds.Credentials.Usernames[u.Username] = credentialRecord{
			Name:     u.Name,
			Email:    u.Email,
			Password: hash,
			Role:     u.Role,
		}
	}
	out, err := yaml.Marshal(&creds)
	if err != nil {
		log.Fatalf("marshal credentials: %v", err)
	}
	credsPath := filepath.Join(dataDir, "auth_config.yaml")
	if err := os.WriteFile(credsPath, out, 0o600); err != nil {
		log.Fatalf("write credentials config: %v", err)
	}
	log.Printf("wrote credentials config %s", credsPath)

	for _, u := range users {
		log.Printf("demo login username=%s password=%s role=%s", u.Username, u.Password, u.Role)
	}
}
